package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-pivot/internal/chain"
	"github.com/mvp-joe/project-pivot/internal/engine"
	"github.com/mvp-joe/project-pivot/internal/model"
	"github.com/mvp-joe/project-pivot/internal/storage"
)

// AggregateArgs are the arguments of pivot_aggregate. Request follows the
// JSON shape of engine.Request.
type AggregateArgs struct {
	Request map[string]any `json:"request"`
	Mode    string         `json:"mode,omitempty"`
}

// StemResponse is returned by pivot_stem.
type StemResponse struct {
	Stem  model.QueryStem `json:"stem"`
	Chain chain.Chain     `json:"chain"`
}

// SchemaResponse is returned by pivot_schema.
type SchemaResponse struct {
	Collections []model.Collection `json:"collections"`
	LinkTypes   []model.LinkType   `json:"linkTypes"`
}

// AddAggregateTool registers the pivot_aggregate tool.
func AddAggregateTool(s *server.MCPServer, eng *engine.Engine, source storage.Source) {
	tool := mcp.NewTool(
		"pivot_aggregate",
		mcp.WithDescription("Aggregate linked documents along a query stem. Groups base documents (and documents reached through link types) by row and column attributes and collects value attributes per group. Returns a nested tree, chart series or a pivot matrix."),
		mcp.WithObject("request",
			mcp.Required(),
			mcp.Description(`Aggregation request: {"stem": {"collectionId": "...", "linkTypeIds": [...]}, "rows": [{"attributeId": "...", "resourceIndex": 0}], "columns": [...], "values": [{"attributeId": "...", "resourceIndex": 2, "aggregation": "sum|avg|min|max"}], "sort": {"attribute": {...}, "direction": "asc|desc"}}. Even resource indexes are collections, odd ones link types.`)),
		mcp.WithString("mode",
			mcp.Description("Output shape: 'tree' (default), 'chart' (at most one value attribute) or 'pivot'. Overrides request.mode.")),
	)

	s.AddTool(tool, createAggregateHandler(eng, source))
}

func createAggregateHandler(eng *engine.Engine, source storage.Source) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args AggregateArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if args.Request == nil {
			return mcp.NewToolResultError("request parameter is required"), nil
		}

		req, err := decodeRequest(args.Request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if args.Mode != "" {
			req.Mode = engine.Mode(args.Mode)
		}

		snap, revision, err := source.Snapshot(ctx, req.Stem)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}

		resp, err := eng.Run(ctx, snap, revision, req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(resp)
	}
}

// AddStemTool registers the pivot_stem tool.
func AddStemTool(s *server.MCPServer, source storage.Source) {
	tool := mcp.NewTool(
		"pivot_stem",
		mcp.WithDescription("Find the shortest query stem (base collection plus link types) connecting two collections, with its resolved resource chain. Use the chain indexes as resourceIndex in pivot_aggregate."),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Base collection id")),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Target collection id")),
	)

	s.AddTool(tool, createStemHandler(source))
}

func createStemHandler(source storage.Source) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		from, err := parseStringArg(args, "from", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		to, err := parseStringArg(args, "to", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		collections, linkTypes, err := source.Schema(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}

		stem, err := chain.NewSchemaGraph(collections, linkTypes).Path(from, to)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(&StemResponse{
			Stem:  stem,
			Chain: chain.Resolve(stem, collections, linkTypes),
		})
	}
}

// AddSchemaTool registers the pivot_schema tool.
func AddSchemaTool(s *server.MCPServer, source storage.Source) {
	tool := mcp.NewTool(
		"pivot_schema",
		mcp.WithDescription("List collections and link types with their attributes."),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		collections, linkTypes, err := source.Schema(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
		return jsonResult(&SchemaResponse{Collections: collections, LinkTypes: linkTypes})
	})
}

func decodeRequest(raw map[string]any) (engine.Request, error) {
	var req engine.Request
	b, err := json.Marshal(raw)
	if err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	if err := json.Unmarshal(b, &req); err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	if req.Stem.CollectionID == "" {
		return req, fmt.Errorf("invalid request: stem.collectionId is required")
	}
	return req, nil
}

// jsonResult returns v as JSON text (mcp-go convention).
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
