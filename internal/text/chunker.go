package text

import (
	"fmt"
	"strings"
)

// Chunk is a bounded, positioned substring of the source document. Start and
// End are the untrimmed character offsets of the window that produced it.
type Chunk struct {
	ID    string `json:"chunk_id"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ChunkText splits text into overlapping fixed-size windows. Windows count
// characters, not bytes, so a boundary never splits a multibyte rune. Adjacent
// chunks share exactly overlap characters, and the final chunk always reaches
// the end of the text. Windows that trim down to nothing are skipped without
// consuming an ID, but the cursor still advances so positional coverage holds.
//
// Callers must guarantee maxChars > 0 and 0 <= overlap < maxChars; parameter
// validation happens once at startup in config.
func ChunkText(text string, maxChars, overlap int) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	idx := 0

	for start < len(runes) {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, Chunk{
				ID:    fmt.Sprintf("chunk_%d", idx),
				Text:  piece,
				Start: start,
				End:   end,
			})
			idx++
		}

		if end == len(runes) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}

	return chunks
}
