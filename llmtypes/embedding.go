package llmtypes

// EmbeddingResponse is the result of an Embed call.
//
// Invariant (spec P9): len(Vectors) == len(input texts), and Vectors[i] is
// the embedding of the i-th input text — adapters that receive
// index-tagged objects from the provider must sort by index before
// returning.
type EmbeddingResponse struct {
	Vectors  [][]float32
	Model    string
	Usage    *Usage
	Metadata map[string]any
}

// Dimension returns the length of the embedding vectors, or 0 if there are
// none.
func (r *EmbeddingResponse) Dimension() int {
	if r == nil || len(r.Vectors) == 0 {
		return 0
	}
	return len(r.Vectors[0])
}
