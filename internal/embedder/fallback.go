package embedder

import (
	"math"
	"strings"
	"unicode"
)

// FallbackDimension is the fixed length of locally hashed vectors.
const FallbackDimension = 512

// HashEmbedding computes a deterministic bag-of-hashed-words pseudo-embedding
// with no I/O. The text is lowercased and tokenized into alphanumeric runs
// longer than one character; each term's frequency is added to the bucket its
// rolling hash selects, and the result is L2-normalized. Identical text
// always yields a bit-identical vector, good enough for rough lexical
// similarity when no embedding model is reachable.
func HashEmbedding(text string) []float32 {
	vector := make([]float32, FallbackDimension)

	for term, count := range termFrequencies(strings.ToLower(text)) {
		bucket := hashTerm(term) % FallbackDimension
		vector[bucket] += float32(count)
	}

	return normalize(vector)
}

// termFrequencies tokenizes text into alphanumeric runs and counts each
// distinct term. Single-character runs carry no signal and are skipped.
func termFrequencies(text string) map[string]int {
	freqs := make(map[string]int)
	for _, token := range strings.FieldsFunc(text, isSeparator) {
		if len(token) > 1 {
			freqs[token]++
		}
	}
	return freqs
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// hashTerm is the classic multiplicative rolling string hash. The result is
// non-negative so a plain modulo maps it onto a bucket index.
func hashTerm(term string) int {
	var h uint32
	for _, b := range []byte(term) {
		h = h*31 + uint32(b)
	}
	return int(h)
}

// normalize scales the vector to unit length. A zero vector is returned
// unchanged rather than dividing by zero.
func normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vector
	}

	norm := float32(math.Sqrt(sum))
	for i, v := range vector {
		vector[i] = v / norm
	}
	return vector
}
