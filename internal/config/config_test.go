package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.False(t, cfg.IndexOnStartup)
	assert.Equal(t, 1500, cfg.ChunkSize)
	assert.Equal(t, 150, cfg.ChunkOverlap)
	assert.Equal(t, "http://localhost:11434", cfg.EmbeddingEndpoint)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, 0.15, cfg.SimilarityThreshold)
	assert.Equal(t, filepath.Join(root, ".reviewrag", "index.json"), cfg.IndexPath)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	yaml := `
enabled: true
index_on_startup: true
chunk_size: 800
chunk_overlap: 80
embedding_model: nomic-embed-text
max_results: 10
similarity_threshold: 0.3
include_patterns:
  - "**/*.go"
exclude_patterns:
  - "**/testdata/**"
workers: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "reviewrag.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.True(t, cfg.IndexOnStartup)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 80, cfg.ChunkOverlap)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.Equal(t, 0.3, cfg.SimilarityThreshold)
	assert.Equal(t, []string{"**/*.go"}, cfg.IncludePatterns)
	assert.Equal(t, []string{"**/testdata/**"}, cfg.ExcludePatterns)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_MalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "reviewrag.yaml"), []byte("chunk_size: [not: valid"), 0o644))

	_, err := Load(root)
	assert.Error(t, err)
}

func TestLoad_ClampsOutOfRangeValues(t *testing.T) {
	root := t.TempDir()
	yaml := `
chunk_size: -10
chunk_overlap: -5
max_results: 0
similarity_threshold: 3.5
workers: -2
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "reviewrag.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, 1500, cfg.ChunkSize)
	assert.Equal(t, 0, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, 1.0, cfg.SimilarityThreshold)
	assert.Equal(t, 0, cfg.Workers)
}

func TestLoad_ExplicitIndexPathKept(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "reviewrag.yaml"),
		[]byte("index_path: /var/cache/reviewrag/index.json\n"), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/reviewrag/index.json", cfg.IndexPath)
}
