// Package embedding talks to the external model-inference collaborator that
// turns free text into fixed-dimension vectors. This service only stores,
// indexes and queries the resulting vectors; generation quality, retries and
// rate limiting are the collaborator's concern.
package embedding

import "context"

// Embedder converts text into a numeric vector representation.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// Dimension returns the configured vector dimensionality.
	Dimension() int
}
