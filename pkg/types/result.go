package types

// ScoredChunk pairs a stored chunk with its cosine-similarity relevance to a
// query. Scores are in [0, 1] for normalized vectors; a dimension mismatch or
// an all-zero vector scores 0.
type ScoredChunk struct {
	Chunk CodeChunk `json:"chunk"`
	Score float64   `json:"score"`
}

// ReviewContext is the ranked related-code context handed to the prompt
// formatter: a short human-readable summary plus the filtered result list.
type ReviewContext struct {
	Summary string        `json:"summary"`
	Results []ScoredChunk `json:"results"`
}
