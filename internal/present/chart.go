package present

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mvp-joe/project-pivot/internal/aggregate"
	"github.com/mvp-joe/project-pivot/internal/model"
)

// DefaultColor is used when a ramp is requested for an unparsable base color.
const DefaultColor = "#4a90d9"

// ValueSpec selects one value leaf of a Result and how it reduces to a scalar.
type ValueSpec struct {
	Key  string         `json:"key"`
	Kind aggregate.Kind `json:"kind"`
	Name string         `json:"name,omitempty"`
}

// Label returns the display name of the value.
func (v ValueSpec) Label() string {
	if v.Name != "" {
		return v.Name
	}
	return v.Key
}

// Point is one row key path of a chart series.
type Point struct {
	Key   string   `json:"key"`
	Path  []string `json:"path"`
	Value any      `json:"value"`
}

// Series is one column key path of a chart.
type Series struct {
	Name   string   `json:"name"`
	Path   []string `json:"path"`
	Color  string   `json:"color"`
	Points []Point  `json:"points"`
}

// LegendEntry names one series and its color.
type LegendEntry struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ChartOptions configures FlattenChart.
type ChartOptions struct {
	// Value is the leaf plotted at every point; nil plots nil values.
	Value *ValueSpec
	// BaseColor is a #rgb or #rrggbb color the alpha ramp starts from.
	BaseColor string
	// MinAlpha is the alpha of the last series.
	MinAlpha float64
	// Name names the single series of charts without columns.
	Name string
}

// FlattenChart turns an aggregation result into chart series. Row key paths
// become points, column key paths become series, both in first-seen order.
// An empty result yields an empty, non-nil list.
func FlattenChart(res *aggregate.Result, opts ChartOptions) []Series {
	series := []Series{}
	if res == nil || res.Tree.Len() == 0 {
		return series
	}

	index := make(map[string]int)
	forEachPath(res.Tree, res.RowLevels, nil, nil, func(rowKeys []string, rowVals []model.Value, rowSub *aggregate.Tree) {
		forEachPath(rowSub, res.ColumnLevels, nil, nil, func(colKeys []string, colVals []model.Value, cell *aggregate.Tree) {
			id := strings.Join(colKeys, "\x00")
			i, ok := index[id]
			if !ok {
				i = len(series)
				index[id] = i
				series = append(series, Series{
					Name:   seriesName(colVals, opts),
					Path:   labels(colVals),
					Points: []Point{},
				})
			}

			var value any
			if opts.Value != nil {
				value = aggregate.Scalar(leafOf(cell, opts.Value.Key), opts.Value.Kind)
			}
			rowLabels := labels(rowVals)
			key := strings.Join(rowLabels, " / ")
			if len(rowLabels) == 0 {
				key = seriesName(nil, opts)
			}
			series[i].Points = append(series[i].Points, Point{Key: key, Path: rowLabels, Value: value})
		})
	})

	colors := Ramp(opts.BaseColor, len(series), opts.MinAlpha)
	for i := range series {
		series[i].Color = colors[i]
	}
	return series
}

func seriesName(colVals []model.Value, opts ChartOptions) string {
	if len(colVals) > 0 {
		return strings.Join(labels(colVals), " / ")
	}
	if opts.Name != "" {
		return opts.Name
	}
	if opts.Value != nil {
		return opts.Value.Label()
	}
	return "value"
}

// Legend derives one legend entry per series.
func Legend(series []Series) []LegendEntry {
	out := make([]LegendEntry, len(series))
	for i, s := range series {
		out[i] = LegendEntry{Name: s.Name, Color: s.Color}
	}
	return out
}

// Ramp returns n rgba colors derived from base with alpha decreasing
// linearly from 1 to minAlpha. A single color keeps alpha 1.
func Ramp(base string, n int, minAlpha float64) []string {
	if n <= 0 {
		return []string{}
	}
	r, g, b, ok := ParseHexColor(base)
	if !ok {
		r, g, b, _ = ParseHexColor(DefaultColor)
	}
	minAlpha = math.Max(0, math.Min(1, minAlpha))

	out := make([]string, n)
	for i := range out {
		alpha := 1.0
		if n > 1 {
			alpha = 1 - float64(i)*(1-minAlpha)/float64(n-1)
		}
		alpha = math.Round(alpha*1000) / 1000
		out[i] = fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
	}
	return out
}

// ParseHexColor parses #rgb and #rrggbb colors.
func ParseHexColor(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

// forEachPath visits every key path of the given depth below t, in
// first-seen order, passing the subtree under the path. Depth 0 visits t itself.
func forEachPath(t *aggregate.Tree, depth int, keys []string, vals []model.Value, fn func([]string, []model.Value, *aggregate.Tree)) {
	if depth == 0 {
		fn(keys, vals, t)
		return
	}
	treeKeys := t.Keys()
	for i, n := range t.Nodes() {
		nextKeys := append(append([]string(nil), keys...), treeKeys[i])
		nextVals := append(append([]model.Value(nil), vals...), n.Value)
		forEachPath(n.Children, depth-1, nextKeys, nextVals, fn)
	}
}

// leafOf returns the leaf stored under a value key, or nil.
func leafOf(t *aggregate.Tree, key string) []any {
	n, ok := t.Get(key)
	if !ok || !n.IsLeaf() {
		return nil
	}
	return n.Leaf
}

func labels(vals []model.Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}
