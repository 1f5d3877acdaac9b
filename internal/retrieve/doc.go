// Package retrieve ranks indexed chunks against a natural-language
// query by cosine similarity over their embedding vectors.
package retrieve
