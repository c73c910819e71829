package domain

// MetadataKeyChunkID is the metadata key carrying the zero-based chunk
// index within its parent document.
const MetadataKeyChunkID = "chunk_id"

// Chunk is a window of source text with its attached metadata.
// Chunks are immutable once created; their order within a document is
// insertion order and adjacent chunks overlap.
type Chunk struct {
	Text     string
	Metadata map[string]string
}

// NewChunk creates a Chunk with a defensive copy of the metadata
func NewChunk(text string, metadata map[string]string) Chunk {
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	return Chunk{Text: text, Metadata: meta}
}
