package embedder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func l2(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestHashEmbedding_Deterministic(t *testing.T) {
	text := "func openIndex(path string) (*Store, error) { return New(path), nil }"

	first := HashEmbedding(text)
	second := HashEmbedding(text)

	assert.Equal(t, first, second, "identical text must yield a bit-identical vector")
}

func TestHashEmbedding_FixedDimension(t *testing.T) {
	assert.Len(t, HashEmbedding("some source text"), FallbackDimension)
	assert.Len(t, HashEmbedding(""), FallbackDimension)
}

func TestHashEmbedding_Normalized(t *testing.T) {
	vec := HashEmbedding("cosine similarity of normalized vectors is their dot product")
	assert.InDelta(t, 1.0, l2(vec), 1e-6)
}

func TestHashEmbedding_NoTokensYieldsZeroVector(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t "},
		{"punctuation", "+-*/!!! ..."},
		{"single char tokens", "a b c d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec := HashEmbedding(tt.text)
			assert.Equal(t, 0.0, l2(vec))
		})
	}
}

func TestHashEmbedding_CaseInsensitive(t *testing.T) {
	assert.Equal(t, HashEmbedding("Parse File Content"), HashEmbedding("parse file content"))
}

func TestHashEmbedding_DistinguishesTexts(t *testing.T) {
	a := HashEmbedding("database connection pool")
	b := HashEmbedding("terminal user interface")
	assert.NotEqual(t, a, b)
}

func TestTermFrequencies(t *testing.T) {
	freqs := termFrequencies("foo bar foo x baz42")

	require.Len(t, freqs, 3)
	assert.Equal(t, 2, freqs["foo"])
	assert.Equal(t, 1, freqs["bar"])
	assert.Equal(t, 1, freqs["baz42"])
}
