package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/stash"
	"github.com/papercomputeco/tagstash/pkg/storage"
)

var (
	searchToolName    = "search_records"
	searchDescription = "Search stored records by tags. Every word of the query must be one of a record's tags; case and accents are ignored. An empty query lists every record, newest first."

	tagStatisticsToolName    = "tag_statistics"
	tagStatisticsDescription = "List the tags in use with the number of records carrying each, most used first."
)

// SearchInput represents the input arguments for the search_records tool.
type SearchInput struct {
	Query  string `json:"query,omitempty" jsonschema:"space separated tags that must all be present"`
	Limit  int    `json:"limit,omitempty" jsonschema:"number of records to return (default: 50, max: 500)"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of records to skip"`
	SortBy string `json:"sort_by,omitempty" jsonschema:"created_at or updated_at (default: created_at)"`
	Order  string `json:"order,omitempty" jsonschema:"asc or desc (default: desc)"`
}

// SearchResult is a single record in the search output. Identifiers and
// times are plain strings so the inferred output schema matches the JSON.
type SearchResult struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// SearchOutput represents the output of the search_records tool.
type SearchOutput struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	HasMore bool           `json:"has_more"`
}

// TagStatisticsInput represents the input arguments for the tag_statistics tool.
type TagStatisticsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"return only the most used tags (default: all)"`
}

// TagStatisticsOutput represents the output of the tag_statistics tool.
type TagStatisticsOutput struct {
	Tags  []storage.TagCount `json:"tags"`
	Count int                `json:"count"`
}

// handleSearch processes a search_records request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP search request",
		"query", input.Query,
		"limit", input.Limit,
		"offset", input.Offset,
	)

	page, err := s.config.Service.Search(ctx, stash.SearchRequest{
		Query:     input.Query,
		Limit:     input.Limit,
		Offset:    input.Offset,
		SortBy:    input.SortBy,
		SortOrder: input.Order,
	})
	if err != nil {
		logger.Error("failed to search records", "error", err)
		return errorResult("Failed to search records: %v", err), SearchOutput{Results: []SearchResult{}}, nil
	}

	output := SearchOutput{
		Query:   input.Query,
		Results: make([]SearchResult, 0, len(page.Records)),
		Total:   page.Total,
		HasMore: page.HasMore,
	}
	for _, r := range page.Records {
		output.Results = append(output.Results, buildSearchResult(r))
	}

	return jsonResult(output)
}

// handleTagStatistics processes a tag_statistics request.
func (s *Server) handleTagStatistics(ctx context.Context, _ *mcp.CallToolRequest, input TagStatisticsInput) (*mcp.CallToolResult, TagStatisticsOutput, error) {
	stats, err := s.config.Service.TagStatistics(ctx)
	if err != nil {
		s.config.Logger.Error("failed to compute tag statistics", "error", err)
		return errorResult("Failed to compute tag statistics: %v", err), TagStatisticsOutput{Tags: []storage.TagCount{}}, nil
	}

	if input.Limit > 0 && input.Limit < len(stats) {
		stats = stats[:input.Limit]
	}

	return jsonResult(TagStatisticsOutput{
		Tags:  stats,
		Count: len(stats),
	})
}

func buildSearchResult(r *record.Record) SearchResult {
	return SearchResult{
		ID:        r.ID.String(),
		Content:   r.Content,
		Tags:      r.TagValues(),
		CreatedAt: r.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// jsonResult returns output as structured content plus its JSON text.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility
func jsonResult[T any](output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		var zero T
		return errorResult("Failed to serialize results: %v", err), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func errorResult(format string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, err)},
		},
	}
}
