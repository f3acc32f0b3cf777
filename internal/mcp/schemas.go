package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexWorkspaceTool returns the tool definition for index_workspace
func indexWorkspaceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_workspace",
		Description: "Rebuild the semantic index over every file in the workspace matching the configured include/exclude patterns",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// indexFileTool returns the tool definition for index_file
func indexFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_file",
		Description: "Incrementally re-index a single workspace file, replacing its previous chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Workspace-relative path of the file to re-index",
				},
			},
			Required: []string{"path"},
		},
	}
}

// retrieveContextTool returns the tool definition for retrieve_context
func retrieveContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "retrieve_context",
		Description: "Retrieve code snippets semantically related to a diff, excluding the files already under review",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"diff": map[string]interface{}{
					"type":        "string",
					"description": "Diff or code excerpt to find related context for (only a bounded prefix is used)",
				},
				"changed_files": map[string]interface{}{
					"type":        "array",
					"description": "Workspace-relative paths of the files under review, excluded from results",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"diff"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index statistics: file count, chunk count, and last update time",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// clearIndexTool returns the tool definition for clear_index
func clearIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_index",
		Description: "Empty the semantic index and persist the empty document immediately",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
