package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dwhitley/reviewrag/internal/config"
	"github.com/dwhitley/reviewrag/internal/embedder"
	"github.com/dwhitley/reviewrag/internal/indexer"
	"github.com/dwhitley/reviewrag/internal/retriever"
	"github.com/dwhitley/reviewrag/internal/store"
	"github.com/dwhitley/reviewrag/internal/workspace"
)

const (
	// ServerName is the MCP server name.
	ServerName = "reviewrag"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the retrieval engine's dependencies.
type Server struct {
	mcp       *server.MCPServer
	cfg       *config.Config
	store     *store.Store
	indexer   *indexer.Indexer
	retriever *retriever.Retriever
}

// NewServer wires the engine for one workspace and registers the tools.
func NewServer(workspaceRoot string, cfg *config.Config) *Server {
	ws := workspace.NewDir(workspaceRoot)
	st := store.New(cfg.IndexPath)
	emb := embedder.New(cfg.EmbeddingEndpoint, cfg.EmbeddingModel)

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		cfg:       cfg,
		store:     st,
		indexer:   indexer.New(st, emb, ws),
		retriever: retriever.New(st, emb),
	}

	s.registerTools()
	return s
}

// Indexer exposes the wired indexer for startup indexing.
func (s *Server) Indexer() *indexer.Indexer {
	return s.indexer
}

// Serve runs the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Flush() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(indexWorkspaceTool(), s.handleIndexWorkspace)
	s.mcp.AddTool(indexFileTool(), s.handleIndexFile)
	s.mcp.AddTool(retrieveContextTool(), s.handleRetrieveContext)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(clearIndexTool(), s.handleClearIndex)
}
