// Package mcp exposes the retrieval engine to editor hosts over the Model
// Context Protocol on stdio. It is thin glue: every tool handler delegates to
// the indexer, retriever, or store and formats the result as JSON text.
package mcp
