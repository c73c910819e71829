package service

import (
	"strconv"
	"strings"

	"github.com/brandloom-ai/brandloom/internal/domain"
)

// Default window geometry for knowledge-base chunking.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// ChunkText splits whitespace-tokenized text into windows of chunkSize
// words, advancing chunkSize-overlap words per step. The final partial
// window is kept when non-empty. Pure function of its input.
func ChunkText(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, domain.ErrInvalidChunkParams
	}

	words := strings.Fields(text)
	step := chunkSize - overlap

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		// Once a window reaches the end of the text the remaining starts
		// would only re-emit overlap already covered.
		if end == len(words) {
			break
		}
	}

	return chunks, nil
}

// ChunkWithMetadata wraps each window with a copy of the caller's
// metadata plus a zero-based chunk_id. The base metadata map is never
// mutated.
func ChunkWithMetadata(text string, metadata map[string]string, chunkSize, overlap int) ([]domain.Chunk, error) {
	texts, err := ChunkText(text, chunkSize, overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, 0, len(texts))
	for i, t := range texts {
		chunk := domain.NewChunk(t, metadata)
		chunk.Metadata[domain.MetadataKeyChunkID] = strconv.Itoa(i)
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}
