package service

import "strings"

// DefaultChunkSize is the fragment size used when ingesting documents.
const DefaultChunkSize = 500

// SplitText splits text into contiguous fragments of at most chunkSize
// characters, preserving order. Fragment boundaries are trimmed and fragments
// that become empty after trimming are dropped. Blank input yields nil.
func SplitText(text string, chunkSize int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)/chunkSize)+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
