package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dwhitley/reviewrag/internal/indexer"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
)

// handleIndexWorkspace handles the index_workspace tool invocation
func (s *Server) handleIndexWorkspace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.indexer.IndexWorkspace(ctx, s.cfg)
	if errors.Is(err, indexer.ErrIndexInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"files_indexed":  stats.FilesIndexed,
		"chunks_created": stats.ChunksCreated,
		"files_skipped":  stats.FilesSkipped,
		"duration_ms":    stats.Duration.Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexFile handles the index_file tool invocation
func (s *Server) handleIndexFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	count, err := s.indexer.IndexFile(ctx, path, s.cfg)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to index file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	if err := s.store.Flush(); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to persist index", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"path":           path,
		"chunks_created": count,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRetrieveContext handles the retrieve_context tool invocation
func (s *Server) handleRetrieveContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	diff, ok := args["diff"].(string)
	if !ok || diff == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "diff parameter is required and cannot be empty", map[string]interface{}{
			"param":  "diff",
			"reason": "missing or empty",
		})
	}

	changedFiles := getStringSlice(args, "changed_files")

	reviewCtx := s.retriever.GetContext(ctx, diff, changedFiles, s.cfg)

	results := make([]map[string]interface{}, 0, len(reviewCtx.Results))
	for _, res := range reviewCtx.Results {
		results = append(results, map[string]interface{}{
			"file_path":  res.Chunk.FilePath,
			"start_line": res.Chunk.StartLine,
			"end_line":   res.Chunk.EndLine,
			"score":      fmt.Sprintf("%.3f", res.Score),
			"content":    res.Chunk.Content,
		})
	}

	response := map[string]interface{}{
		"summary": reviewCtx.Summary,
		"results": results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"index_path":  s.store.Path(),
		"file_count":  len(s.store.IndexedFiles()),
		"chunk_count": s.store.Count(),
		"updated_at":  s.store.UpdatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClearIndex handles the clear_index tool invocation
func (s *Server) handleClearIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.store.Clear(); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to clear index", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"cleared": true,
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringSlice extracts an optional string-array parameter
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
