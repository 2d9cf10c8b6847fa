package processor

import "strings"

// boundaryLookback is how far back from a hard cut the chunker searches for a
// whitespace boundary before giving up and cutting mid-word.
const boundaryLookback = 32

// ChunkText splits text into overlapping chunks of at most ChunkSize
// characters. Consecutive chunks share exactly ChunkOverlap characters, so
// concatenating the first chunk with the non-overlapping tail of each
// following chunk reconstructs the input. Cut points prefer whitespace within
// a small lookback window over hard mid-word cuts.
//
// Size and overlap count characters, not bytes, so multi-byte text is never
// split inside a rune.
//
// Empty or whitespace-only text yields no chunks; text no longer than
// ChunkSize yields exactly one.
func (p *DocumentProcessor) ChunkText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= p.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + p.ChunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// Pull the cut back to the nearest whitespace if one is close
		// enough. The window is clamped to the chunk itself for sizes
		// smaller than the lookback, and the cut never shrinks past the
		// overlap region or progress stalls.
		cut := end
		ws := end - boundaryLookback
		if ws < start {
			ws = start
		}
		if i := lastWhitespace(runes[ws:end]); i >= 0 {
			candidate := ws + i + 1
			if candidate > start+p.ChunkOverlap {
				cut = candidate
			}
		}

		chunks = append(chunks, string(runes[start:cut]))
		start = cut - p.ChunkOverlap
	}

	return chunks
}

func lastWhitespace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		switch runes[i] {
		case ' ', '\t', '\n':
			return i
		}
	}
	return -1
}
