package present

// Test Plan for pivot flattening:
// - Row and column headers follow first-seen order
// - Cells hold one scalar per value, nil for missing combinations
// - Totals aggregate concatenated leaves, not cell scalars
// - Value looks up cells by canonical key paths
// - Optional header sorting is by typed value
// - Flatten round-trip reproduces the tree's row keys
// - Unknown value keys are rejected
// - Empty results give an empty matrix

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-pivot/internal/aggregate"
	"github.com/mvp-joe/project-pivot/internal/model"
)

func TestFlattenPivot_CellsAndTotals(t *testing.T) {
	t.Parallel()

	res := budgetByDeptAndPhase(t)
	m, err := FlattenPivot(res, PivotOptions{Values: []ValueSpec{
		{Key: "2:budget", Kind: aggregate.KindSum},
		{Key: "2:budget", Kind: aggregate.KindMax},
	}})
	require.NoError(t, err)

	require.Len(t, m.RowHeaders, 2)
	assert.Equal(t, []string{"eng"}, m.RowHeaders[0].Labels())
	assert.Equal(t, []string{"ops"}, m.RowHeaders[1].Labels())
	require.Len(t, m.ColumnHeaders, 2)
	assert.Equal(t, []string{"build"}, m.ColumnHeaders[0].Labels())
	assert.Equal(t, []string{"run"}, m.ColumnHeaders[1].Labels())

	assert.Equal(t, [][]any{
		{15.0, 10.0, 20.0, 20.0},
		{nil, nil, 20.0, 20.0},
	}, m.Cells)

	assert.Equal(t, [][]any{{35.0, 20.0}, {20.0, 20.0}}, m.RowTotals)
	assert.Equal(t, [][]any{{15.0, 10.0}, {40.0, 20.0}}, m.ColumnTotals)
	assert.Equal(t, []any{55.0, 20.0}, m.GrandTotals)

	v, ok := m.Value([]string{"s:eng"}, []string{"s:build"}, 0)
	require.True(t, ok)
	assert.Equal(t, 15.0, v)

	v, ok = m.Value([]string{"s:ops"}, []string{"s:build"}, 1)
	require.True(t, ok)
	assert.Nil(t, v)

	_, ok = m.Value([]string{"s:nope"}, []string{"s:build"}, 0)
	assert.False(t, ok)
	_, ok = m.Value([]string{"s:eng"}, []string{"s:build"}, 2)
	assert.False(t, ok)
}

func TestFlattenPivot_SortHeaders(t *testing.T) {
	t.Parallel()

	docs := []model.Document{
		{ID: "d1", CollectionID: "c1", Data: map[string]any{"a1": "Sport"}},
		{ID: "d2", CollectionID: "c1", Data: map[string]any{"a1": "Dance"}},
		{ID: "d3", CollectionID: "c1", Data: map[string]any{"a1": "Glass"}},
	}
	res := aggregateDocs(t, model.QueryStem{CollectionID: "c1"}, docs, attrs(attr("a1", 0)), nil, nil)

	m, err := FlattenPivot(res, PivotOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"s:Sport"}, {"s:Dance"}, {"s:Glass"}}, Rows(m))

	m, err = FlattenPivot(res, PivotOptions{SortRows: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"s:Dance"}, {"s:Glass"}, {"s:Sport"}}, Rows(m))
	// no values: one empty column, zero-width cells
	require.Len(t, m.ColumnHeaders, 1)
	assert.Empty(t, m.ColumnHeaders[0].Keys)
	assert.Equal(t, [][]any{{}, {}, {}}, m.Cells)
}

func TestFlattenPivot_RoundTripRowKeys(t *testing.T) {
	t.Parallel()

	res := aggregateDocs(t, staffToProjects, testDocuments, attrs(attr("dept", 0)), nil, nil)
	m, err := FlattenPivot(res, PivotOptions{})
	require.NoError(t, err)

	var derived []string
	for _, path := range Rows(m) {
		require.Len(t, path, 1)
		derived = append(derived, path[0])
	}
	assert.Equal(t, res.Tree.Keys(), derived)
}

func TestFlattenPivot_ValuesOnly(t *testing.T) {
	t.Parallel()

	res := aggregateDocs(t, staffToProjects, testDocuments, nil, nil, attrs(attr("budget", 2)))
	m, err := FlattenPivot(res, PivotOptions{Values: []ValueSpec{{Key: "2:budget", Kind: aggregate.KindAvg}}})
	require.NoError(t, err)

	require.Len(t, m.RowHeaders, 1)
	require.Len(t, m.ColumnHeaders, 1)
	assert.InDelta(t, 35.0/3, m.Cells[0][0], 1e-9)
	assert.InDelta(t, 35.0/3, m.GrandTotals[0], 1e-9)
}

func TestFlattenPivot_UnknownValue(t *testing.T) {
	t.Parallel()

	res := budgetByDeptAndPhase(t)
	_, err := FlattenPivot(res, PivotOptions{Values: []ValueSpec{{Key: "0:salary", Kind: aggregate.KindSum}}})
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func TestFlattenPivot_Empty(t *testing.T) {
	t.Parallel()

	res := aggregateDocs(t, staffToProjects, testDocuments, nil, nil, nil)
	m, err := FlattenPivot(res, PivotOptions{})
	require.NoError(t, err)
	assert.Empty(t, m.RowHeaders)
	assert.Empty(t, m.ColumnHeaders)
	assert.Empty(t, m.Cells)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rowHeaders":[],"columnHeaders":[],"values":[],"cells":[],"rowTotals":[],"columnTotals":[],"grandTotals":[]}`, string(out))
}
