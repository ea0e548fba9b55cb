package present

// Test Plan for chart flattening:
// - Column key paths become series in first-seen order, row key paths become points
// - Point values reduce the selected leaf with the value's kind
// - Results without columns produce a single named series
// - Results without a value spec plot nil values
// - Empty results produce an empty, non-nil series list
// - Ramp spreads alpha linearly from 1 to minAlpha and falls back on bad colors
// - Legend mirrors series names and colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-pivot/internal/aggregate"
)

func TestFlattenChart_SeriesPerColumn(t *testing.T) {
	t.Parallel()

	res := budgetByDeptAndPhase(t)
	series := FlattenChart(res, ChartOptions{
		Value:     &ValueSpec{Key: "2:budget", Kind: aggregate.KindSum},
		BaseColor: "#336699",
		MinAlpha:  0.4,
	})

	require.Len(t, series, 2)

	assert.Equal(t, "build", series[0].Name)
	assert.Equal(t, []string{"build"}, series[0].Path)
	assert.Equal(t, "rgba(51, 102, 153, 1)", series[0].Color)
	assert.Equal(t, []Point{{Key: "eng", Path: []string{"eng"}, Value: 15.0}}, series[0].Points)

	assert.Equal(t, "run", series[1].Name)
	assert.Equal(t, "rgba(51, 102, 153, 0.4)", series[1].Color)
	require.Len(t, series[1].Points, 2)
	assert.Equal(t, "eng", series[1].Points[0].Key)
	assert.Equal(t, 20.0, series[1].Points[0].Value)
	assert.Equal(t, "ops", series[1].Points[1].Key)
	assert.Equal(t, 20.0, series[1].Points[1].Value)

	legend := Legend(series)
	assert.Equal(t, []LegendEntry{
		{Name: "build", Color: "rgba(51, 102, 153, 1)"},
		{Name: "run", Color: "rgba(51, 102, 153, 0.4)"},
	}, legend)
}

func TestFlattenChart_NoColumns(t *testing.T) {
	t.Parallel()

	res := aggregateDocs(t, staffToProjects, testDocuments,
		attrs(attr("dept", 0)), nil, attrs(attr("budget", 2)))

	series := FlattenChart(res, ChartOptions{
		Value:     &ValueSpec{Key: "2:budget", Kind: aggregate.KindMax, Name: "Max budget"},
		BaseColor: "#336699",
		MinAlpha:  0.4,
	})

	require.Len(t, series, 1)
	assert.Equal(t, "Max budget", series[0].Name)
	assert.Equal(t, "rgba(51, 102, 153, 1)", series[0].Color)
	assert.Equal(t, []Point{
		{Key: "eng", Path: []string{"eng"}, Value: 20.0},
		{Key: "ops", Path: []string{"ops"}, Value: 20.0},
	}, series[0].Points)
}

func TestFlattenChart_NoValue(t *testing.T) {
	t.Parallel()

	res := aggregateDocs(t, staffToProjects, testDocuments, attrs(attr("dept", 0)), nil, nil)
	series := FlattenChart(res, ChartOptions{Name: "Staff"})

	require.Len(t, series, 1)
	assert.Equal(t, "Staff", series[0].Name)
	require.Len(t, series[0].Points, 2)
	assert.Nil(t, series[0].Points[0].Value)
	assert.Nil(t, series[0].Points[1].Value)
}

func TestFlattenChart_Empty(t *testing.T) {
	t.Parallel()

	res := aggregateDocs(t, staffToProjects, testDocuments, nil, nil, nil)
	series := FlattenChart(res, ChartOptions{})
	assert.NotNil(t, series)
	assert.Empty(t, series)

	assert.NotNil(t, FlattenChart(nil, ChartOptions{}))
	assert.Empty(t, Legend(nil))
}

func TestRamp(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Ramp("#336699", 0, 0.3))
	assert.Equal(t, []string{"rgba(51, 102, 153, 1)"}, Ramp("#336699", 1, 0.3))
	assert.Equal(t, []string{
		"rgba(51, 102, 153, 1)",
		"rgba(51, 102, 153, 0.7)",
		"rgba(51, 102, 153, 0.4)",
	}, Ramp("#336699", 3, 0.4))

	assert.Equal(t, []string{"rgba(170, 187, 204, 1)"}, Ramp("#abc", 1, 0.5))
	assert.Equal(t, []string{"rgba(74, 144, 217, 1)"}, Ramp("not-a-color", 1, 0.5))
}

func TestParseHexColor(t *testing.T) {
	t.Parallel()

	r, g, b, ok := ParseHexColor("#FF8000")
	require.True(t, ok)
	assert.Equal(t, [3]uint8{255, 128, 0}, [3]uint8{r, g, b})

	for _, bad := range []string{"", "#12", "#12345", "#gggggg", "#1234567"} {
		_, _, _, ok := ParseHexColor(bad)
		assert.False(t, ok, bad)
	}
}
