// internal/tools/vectorsearch/config.go
package vectorsearch

// defaultTopK is the retrieval depth used when the caller does not pass one.
const defaultTopK = 3
