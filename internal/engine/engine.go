package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/project-pivot/internal/aggregate"
	"github.com/mvp-joe/project-pivot/internal/chain"
	"github.com/mvp-joe/project-pivot/internal/graph"
	"github.com/mvp-joe/project-pivot/internal/model"
	"github.com/mvp-joe/project-pivot/internal/present"
)

// Mode selects the shape of a Response.
type Mode string

const (
	ModeTree  Mode = "tree"
	ModeChart Mode = "chart"
	ModePivot Mode = "pivot"
)

// ErrChartValues is returned when a chart request configures more than one
// value attribute.
var ErrChartValues = errors.New("chart mode takes at most one value attribute")

// ValueAttribute is a value axis attribute with its aggregation.
type ValueAttribute struct {
	model.AggregationAttribute
	Aggregation string `json:"aggregation,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Request describes one aggregation run. Chart mode plots a single value
// attribute and rejects requests with more than one; tree and pivot modes
// take any number.
type Request struct {
	Stem        model.QueryStem              `json:"stem"`
	Rows        []model.AggregationAttribute `json:"rows,omitempty"`
	Columns     []model.AggregationAttribute `json:"columns,omitempty"`
	Values      []ValueAttribute             `json:"values,omitempty"`
	Sort        *present.SortSpec            `json:"sort,omitempty"`
	Mode        Mode                         `json:"mode,omitempty"`
	SortRows    bool                         `json:"sortRows,omitempty"`
	SortColumns bool                         `json:"sortColumns,omitempty"`
}

// Response is the output of Run. Only the field matching Mode is set
// among Tree, Series and Pivot. Responses served from the cache share Chain,
// Tree, Series, Legend and Pivot with the cached entry, so callers must treat
// a Response as read-only.
type Response struct {
	Mode         Mode                  `json:"mode"`
	Chain        chain.Chain           `json:"chain"`
	RowLevels    int                   `json:"rowLevels"`
	ColumnLevels int                   `json:"columnLevels"`
	Tree         *aggregate.Tree       `json:"tree,omitempty"`
	Series       []present.Series      `json:"series,omitempty"`
	Legend       []present.LegendEntry `json:"legend,omitempty"`
	Pivot        *present.PivotMatrix  `json:"pivot,omitempty"`
	Took         time.Duration         `json:"took"`
	Cached       bool                  `json:"cached,omitempty"`
}

// Options configures an Engine.
type Options struct {
	// CacheSize bounds the number of cached responses; 0 disables caching.
	CacheSize int
	// BaseColor is the chart color used when the column collection has none.
	BaseColor string
	// MinAlpha is the alpha of the last chart series.
	MinAlpha float64
}

// Engine runs the aggregation pipeline over immutable snapshots.
// It is safe for concurrent use.
type Engine struct {
	opts     Options
	cache    otter.Cache[string, *Response]
	hasCache bool
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	e := &Engine{opts: opts}
	if opts.CacheSize > 0 {
		cache, err := otter.MustBuilder[string, *Response](opts.CacheSize).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		e.cache = cache
		e.hasCache = true
	}
	return e, nil
}

// Close releases the result cache.
func (e *Engine) Close() {
	if e.hasCache {
		e.cache.Close()
	}
}

// Run resolves the chain, builds the linked graph and aggregates it. Every
// call rebuilds from the snapshot. When revision is non-empty, responses are
// cached per revision and request.
func (e *Engine) Run(ctx context.Context, snap *model.Snapshot, revision string, req Request) (*Response, error) {
	start := time.Now()

	mode, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	if err := present.ValidateSort(req.Sort); err != nil {
		return nil, err
	}
	specs, err := valueSpecs(req.Values)
	if err != nil {
		return nil, err
	}
	if mode == ModeChart && len(specs) > 1 {
		return nil, fmt.Errorf("%w: got %d", ErrChartValues, len(specs))
	}

	var cacheKey string
	if e.hasCache && revision != "" {
		cacheKey, err = requestKey(revision, req)
		if err != nil {
			return nil, err
		}
		if cached, ok := e.cache.Get(cacheKey); ok {
			out := *cached
			out.Cached = true
			out.Took = time.Since(start)
			return &out, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := chain.Resolve(req.Stem, snap.Collections, snap.LinkTypes)

	documents := snap.Documents
	if req.Sort != nil {
		documents = present.SortDocuments(documents, req.Sort, c.BaseCollectionID())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g := graph.Build(c.CollectionIDs(), documents, c.LinkTypes(), snap.LinkInstances)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values := make([]model.AggregationAttribute, len(req.Values))
	for i, v := range req.Values {
		values[i] = v.AggregationAttribute
	}
	res, err := aggregate.New(c, g).Aggregate(req.Rows, req.Columns, values)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate: %w", err)
	}

	resp := &Response{
		Mode:         mode,
		Chain:        c,
		RowLevels:    res.RowLevels,
		ColumnLevels: res.ColumnLevels,
	}

	switch mode {
	case ModeTree:
		resp.Tree = res.Tree
	case ModeChart:
		opts := present.ChartOptions{
			BaseColor: e.baseColor(c, req.Columns),
			MinAlpha:  e.opts.MinAlpha,
		}
		if len(specs) > 0 {
			opts.Value = &specs[0]
			opts.Name = specs[0].Label()
		}
		resp.Series = present.FlattenChart(res, opts)
		resp.Legend = present.Legend(resp.Series)
	case ModePivot:
		m, err := present.FlattenPivot(res, present.PivotOptions{
			Values:      specs,
			SortRows:    req.SortRows,
			SortColumns: req.SortColumns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to flatten pivot: %w", err)
		}
		resp.Pivot = m
	}

	resp.Took = time.Since(start)
	if cacheKey != "" {
		e.cache.Set(cacheKey, resp)
	}
	return resp, nil
}

// baseColor picks the color of the collection the first column attribute
// belongs to, falling back to the configured color.
func (e *Engine) baseColor(c chain.Chain, columns []model.AggregationAttribute) string {
	if len(columns) > 0 {
		if step, ok := c.Step(columns[0].ResourceIndex); ok && step.Collection != nil && step.Collection.Color != "" {
			return step.Collection.Color
		}
	}
	return e.opts.BaseColor
}

func parseMode(m Mode) (Mode, error) {
	switch m {
	case "":
		return ModeTree, nil
	case ModeTree, ModeChart, ModePivot:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want tree, chart or pivot)", m)
}

func valueSpecs(values []ValueAttribute) ([]present.ValueSpec, error) {
	specs := make([]present.ValueSpec, len(values))
	for i, v := range values {
		kind, err := aggregate.ParseKind(v.Aggregation)
		if err != nil {
			return nil, fmt.Errorf("value %s: %w", v.Key(), err)
		}
		specs[i] = present.ValueSpec{Key: v.Key(), Kind: kind, Name: v.Name}
	}
	return specs, nil
}

func requestKey(revision string, req Request) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	return revision + "\x00" + string(b), nil
}
