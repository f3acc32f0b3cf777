// Package retriever answers top-K similarity queries against the stored
// chunk vectors with a linear cosine-similarity scan. At single-workspace
// scale that beats carrying an approximate-NN structure.
package retriever
