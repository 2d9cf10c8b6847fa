package processor

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidText builds whitespace-free text of length n so cut points are
// deterministic hard cuts
func solidText(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + i%10))
	}
	return b.String()
}

func TestChunkTextEmpty(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	assert.Nil(t, p.ChunkText(""))
	assert.Nil(t, p.ChunkText("   \n\t  "))
}

func TestChunkTextShort(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	chunks := p.ChunkText("a short lesson")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short lesson", chunks[0])
}

func TestChunkTextExactSizeBoundary(t *testing.T) {
	p := NewDocumentProcessor(800, 100)

	chunks := p.ChunkText(solidText(800))
	assert.Len(t, chunks, 1)

	chunks = p.ChunkText(solidText(801))
	assert.Len(t, chunks, 2)
}

func TestChunkTextCountAndOverlap(t *testing.T) {
	p := NewDocumentProcessor(800, 100)
	text := solidText(2200)

	chunks := p.ChunkText(text)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 800, "chunk %d too long", i)
	}

	// Consecutive chunks share exactly the overlap
	assert.Equal(t, chunks[0][len(chunks[0])-100:], chunks[1][:100])
	assert.Equal(t, chunks[1][len(chunks[1])-100:], chunks[2][:100])
}

func TestChunkTextReconstruction(t *testing.T) {
	p := NewDocumentProcessor(800, 100)
	text := solidText(3000)

	chunks := p.ChunkText(text)
	require.True(t, len(chunks) > 1)

	rebuilt := chunks[0]
	for _, chunk := range chunks[1:] {
		rebuilt += chunk[100:]
	}
	assert.Equal(t, text, rebuilt)
}

func TestChunkTextSmallChunkSize(t *testing.T) {
	// Chunk sizes below the whitespace lookback window must still work
	p := NewDocumentProcessor(16, 4)
	text := solidText(100)

	chunks := p.ChunkText(text)
	require.True(t, len(chunks) > 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 16, "chunk %d too long", i)
	}

	rebuilt := chunks[0]
	for _, chunk := range chunks[1:] {
		rebuilt += chunk[4:]
	}
	assert.Equal(t, text, rebuilt)
}

func TestChunkTextMultiByteRunes(t *testing.T) {
	p := NewDocumentProcessor(100, 20)
	// 300 runes of CJK text with no whitespace, forcing hard cuts
	text := strings.Repeat("模型上下文协议课程内容", 30)

	chunks := p.ChunkText(text)
	require.True(t, len(chunks) > 1)

	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %d is not valid UTF-8", i)
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100, "chunk %d too long", i)
	}

	// Overlap and reconstruction hold in characters
	rebuilt := []rune(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		assert.Equal(t, string(rebuilt[len(rebuilt)-20:]), string(runes[:20]))
		rebuilt = append(rebuilt, runes[20:]...)
	}
	assert.Equal(t, text, string(rebuilt))
}

func TestChunkTextPrefersWhitespaceCut(t *testing.T) {
	p := NewDocumentProcessor(100, 20)

	// A space sits just inside the lookback window of the first hard cut
	text := solidText(90) + " " + solidText(100)
	chunks := p.ChunkText(text)
	require.True(t, len(chunks) >= 2)

	// The first chunk ends at the space instead of mid-word
	assert.Equal(t, 91, len(chunks[0]))
	assert.True(t, strings.HasSuffix(chunks[0], " "))
}

func TestNewDocumentProcessorDefaults(t *testing.T) {
	p := NewDocumentProcessor(0, -1)
	assert.Equal(t, DefaultChunkSize, p.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, p.ChunkOverlap)

	// Overlap >= size would stall the loop, so it is clamped
	p = NewDocumentProcessor(100, 200)
	assert.True(t, p.ChunkOverlap < p.ChunkSize)
}
