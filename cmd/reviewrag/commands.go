package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dwhitley/reviewrag/internal/config"
	"github.com/dwhitley/reviewrag/internal/embedder"
	"github.com/dwhitley/reviewrag/internal/indexer"
	"github.com/dwhitley/reviewrag/internal/mcp"
	"github.com/dwhitley/reviewrag/internal/retriever"
	"github.com/dwhitley/reviewrag/internal/store"
	"github.com/dwhitley/reviewrag/internal/workspace"
)

var workspaceRoot string

var rootCmd = &cobra.Command{
	Use:   "reviewrag",
	Short: "Embedded semantic code retrieval for AI code reviews",
	Long: `reviewrag maintains a small, embedded semantic-search index over the files
of a single workspace and answers top-K similarity queries against it, so a
code review prompt can be augmented with related snippets from the same
codebase. No external database is required: the index is one JSON document.`,
	Version: fmt.Sprintf("%s (built %s)", version, buildTime),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		server := mcp.NewServer(workspaceRoot, cfg)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if cfg.Enabled && cfg.IndexOnStartup {
			go func() {
				stats, err := server.Indexer().IndexWorkspace(ctx, cfg)
				if err != nil {
					log.Printf("reviewrag: startup indexing failed: %v", err)
					return
				}
				log.Printf("reviewrag: startup indexing done: %d files, %d chunks, %d skipped in %s",
					stats.FilesIndexed, stats.ChunksCreated, stats.FilesSkipped, stats.Duration)
			}()
		}

		log.Printf("reviewrag v%s: MCP server ready, listening on stdio", version)
		return server.Serve(ctx)
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the workspace once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Enabled {
			log.Print("reviewrag: indexing is disabled by configuration")
			return nil
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		ws := workspace.NewDir(workspaceRoot)
		st := store.New(cfg.IndexPath)
		emb := embedder.New(cfg.EmbeddingEndpoint, cfg.EmbeddingModel)

		stats, err := indexer.New(st, emb, ws).IndexWorkspace(ctx, cfg)
		if err != nil {
			return err
		}

		fmt.Printf("indexed %d files (%d chunks, %d skipped) in %s\n",
			stats.FilesIndexed, stats.ChunksCreated, stats.FilesSkipped, stats.Duration)
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <text>...",
	Short: "Retrieve chunks related to the query text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st := store.New(cfg.IndexPath)
		emb := embedder.New(cfg.EmbeddingEndpoint, cfg.EmbeddingModel)

		results := retriever.New(st, emb).Retrieve(cmd.Context(), strings.Join(args, " "), cfg)
		if len(results) == 0 {
			fmt.Println("No similar code found")
			return nil
		}

		for _, res := range results {
			fmt.Printf("%.3f  %s:%d-%d\n", res.Score, res.Chunk.FilePath, res.Chunk.StartLine, res.Chunk.EndLine)
		}
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	if workspaceRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		workspaceRoot = cwd
	}
	return config.Load(workspaceRoot)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceRoot, "workspace", "w", "", "workspace root directory (defaults to the current directory)")
	rootCmd.AddCommand(serveCmd, indexCmd, queryCmd)
}
