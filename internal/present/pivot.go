package present

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mvp-joe/project-pivot/internal/aggregate"
	"github.com/mvp-joe/project-pivot/internal/model"
)

// ErrUnknownValue is returned when a ValueSpec names a value the result does not hold.
var ErrUnknownValue = errors.New("unknown value attribute")

// Header is one row or column key path of a pivot matrix.
type Header struct {
	Keys   []string      // canonical keys, for lookups
	Values []model.Value // typed values, for display
}

// Labels returns the display strings of the path.
func (h Header) Labels() []string { return labels(h.Values) }

// MarshalJSON writes the header as its list of typed values.
func (h Header) MarshalJSON() ([]byte, error) {
	if h.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.Values)
}

func (h Header) id() string { return strings.Join(h.Keys, "\x00") }

// PivotOptions configures FlattenPivot.
type PivotOptions struct {
	Values      []ValueSpec
	SortRows    bool // order row headers by value instead of first-seen order
	SortColumns bool
}

// PivotMatrix is a flattened row x column x value table.
// Cells[r][c*len(Values)+v] holds the aggregated scalar for row r, column c
// and value v, or nil when the combination has no data.
type PivotMatrix struct {
	RowHeaders    []Header    `json:"rowHeaders"`
	ColumnHeaders []Header    `json:"columnHeaders"`
	Values        []ValueSpec `json:"values"`
	Cells         [][]any     `json:"cells"`
	RowTotals     [][]any     `json:"rowTotals"`    // [row][value]
	ColumnTotals  [][]any     `json:"columnTotals"` // [column][value]
	GrandTotals   []any       `json:"grandTotals"`  // [value]

	rowIndex map[string]int
	colIndex map[string]int
}

// Value returns the cell addressed by canonical row and column key paths.
func (m *PivotMatrix) Value(rowPath, colPath []string, v int) (any, bool) {
	r, ok := m.rowIndex[strings.Join(rowPath, "\x00")]
	if !ok {
		return nil, false
	}
	c, ok := m.colIndex[strings.Join(colPath, "\x00")]
	if !ok || v < 0 || v >= len(m.Values) {
		return nil, false
	}
	return m.Cells[r][c*len(m.Values)+v], true
}

type pivotRow struct {
	header Header
	sub    *aggregate.Tree
}

// FlattenPivot turns an aggregation result into a pivot matrix. Totals
// aggregate the concatenated leaves of every cell they cover. An empty
// result yields a matrix without rows or columns.
func FlattenPivot(res *aggregate.Result, opts PivotOptions) (*PivotMatrix, error) {
	m := &PivotMatrix{
		RowHeaders:    []Header{},
		ColumnHeaders: []Header{},
		Values:        opts.Values,
		Cells:         [][]any{},
		RowTotals:     [][]any{},
		ColumnTotals:  [][]any{},
		GrandTotals:   []any{},
		rowIndex:      make(map[string]int),
		colIndex:      make(map[string]int),
	}
	if m.Values == nil {
		m.Values = []ValueSpec{}
	}
	if res == nil {
		return m, nil
	}

	for _, v := range opts.Values {
		if !slices.Contains(res.ValueKeys, v.Key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownValue, v.Key)
		}
	}
	if res.Tree.Len() == 0 {
		return m, nil
	}

	var rows []pivotRow
	var cols []Header
	seenCols := make(map[string]bool)
	forEachPath(res.Tree, res.RowLevels, nil, nil, func(rowKeys []string, rowVals []model.Value, rowSub *aggregate.Tree) {
		rows = append(rows, pivotRow{header: Header{Keys: rowKeys, Values: rowVals}, sub: rowSub})
		forEachPath(rowSub, res.ColumnLevels, nil, nil, func(colKeys []string, colVals []model.Value, _ *aggregate.Tree) {
			h := Header{Keys: colKeys, Values: colVals}
			if !seenCols[h.id()] {
				seenCols[h.id()] = true
				cols = append(cols, h)
			}
		})
	})

	if opts.SortRows {
		slices.SortStableFunc(rows, func(a, b pivotRow) int { return compareHeaders(a.header, b.header) })
	}
	if opts.SortColumns {
		slices.SortStableFunc(cols, compareHeaders)
	}

	nv := len(opts.Values)
	colLeaves := make([][][]any, len(cols))
	for c := range colLeaves {
		colLeaves[c] = make([][]any, nv)
	}
	grandLeaves := make([][]any, nv)

	for r, row := range rows {
		m.RowHeaders = append(m.RowHeaders, row.header)
		m.rowIndex[row.header.id()] = r

		cells := make([]any, len(cols)*nv)
		rowLeaves := make([][]any, nv)
		for c, col := range cols {
			cell, ok := descend(row.sub, col.Keys)
			if !ok {
				continue
			}
			for v, spec := range opts.Values {
				leaf := leafOf(cell, spec.Key)
				cells[c*nv+v] = aggregate.Scalar(leaf, spec.Kind)
				rowLeaves[v] = append(rowLeaves[v], leaf...)
				colLeaves[c][v] = append(colLeaves[c][v], leaf...)
				grandLeaves[v] = append(grandLeaves[v], leaf...)
			}
		}
		m.Cells = append(m.Cells, cells)
		m.RowTotals = append(m.RowTotals, reduceAll(rowLeaves, opts.Values))
	}

	for c, col := range cols {
		m.ColumnHeaders = append(m.ColumnHeaders, col)
		m.colIndex[col.id()] = c
		m.ColumnTotals = append(m.ColumnTotals, reduceAll(colLeaves[c], opts.Values))
	}
	m.GrandTotals = reduceAll(grandLeaves, opts.Values)

	return m, nil
}

// Rows returns the canonical row key paths of a matrix, in matrix order.
func Rows(m *PivotMatrix) [][]string {
	out := make([][]string, len(m.RowHeaders))
	for i, h := range m.RowHeaders {
		out[i] = append([]string(nil), h.Keys...)
	}
	return out
}

func reduceAll(leaves [][]any, specs []ValueSpec) []any {
	out := make([]any, len(specs))
	for v, spec := range specs {
		out[v] = aggregate.Scalar(leaves[v], spec.Kind)
	}
	return out
}

// descend follows canonical keys below t and returns the subtree reached.
func descend(t *aggregate.Tree, keys []string) (*aggregate.Tree, bool) {
	for _, k := range keys {
		n, ok := t.Get(k)
		if !ok {
			return nil, false
		}
		t = n.Children
	}
	return t, true
}

func compareHeaders(a, b Header) int {
	for i := 0; i < len(a.Values) && i < len(b.Values); i++ {
		if c := model.Compare(a.Values[i], b.Values[i]); c != 0 {
			return c
		}
	}
	return len(a.Values) - len(b.Values)
}
