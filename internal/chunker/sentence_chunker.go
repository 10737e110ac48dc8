package chunker

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"grimoire/internal/domain"
)

var (
	boldRe     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe   = regexp.MustCompile(`\*(.*?)\*`)
	headingRe  = regexp.MustCompile(`#+\s*`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// SentenceChunker splits entry text into sentence contexts and overlapping
// word-window chunks.
type SentenceChunker struct {
	chunkSize int
}

// NewSentenceChunker creates a chunker with the given chunk size in words.
// Sizes of 4 or fewer are rejected: the minimum overlap would reach the
// chunk size and the chunk count formula degenerates.
func NewSentenceChunker(chunkSize int) (*SentenceChunker, error) {
	if chunkSize <= 4 {
		return nil, fmt.Errorf("chunk size must be greater than 4, got %d", chunkSize)
	}
	return &SentenceChunker{chunkSize: chunkSize}, nil
}

// ChunkEntries splits each entry into ordered sentence contexts, each owning
// one or more chunks. Pure function of the input text and chunk size.
func (c *SentenceChunker) ChunkEntries(entries []domain.RawEntry) []domain.ChunkedEntry {
	chunked := make([]domain.ChunkedEntry, 0, len(entries))
	for _, entry := range entries {
		sentences := cleanAndSplit(entry.Text)
		contexts := make([]domain.ChunkContext, 0, len(sentences))
		for position, sentence := range sentences {
			contexts = append(contexts, domain.ChunkContext{
				Text:     sentence,
				Position: position,
				Chunks:   c.chunkSentence(sentence),
			})
		}
		chunked = append(chunked, domain.ChunkedEntry{Name: entry.Name, ChunkContexts: contexts})
	}
	return chunked
}

// cleanAndSplit strips markup and splits text into trimmed sentences.
func cleanAndSplit(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "")

	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// chunkSentence breaks one sentence into chunks of chunkSize words with at
// least minOverlap shared words between adjacent chunks. The first and last
// chunks pin the sentence boundaries; middle chunks are centered on evenly
// distributed word indexes.
func (c *SentenceChunker) chunkSentence(sentence string) []domain.Chunk {
	words := strings.Fields(sentence)
	if len(words) <= c.chunkSize {
		return []domain.Chunk{{Text: sentence}}
	}

	minOverlap := int(math.Ceil(float64(c.chunkSize) * 0.15))
	numChunks := int(math.Ceil(float64(len(words)-minOverlap) / float64(c.chunkSize-minOverlap)))

	chunks := make([]domain.Chunk, 0, numChunks)
	for i := 0; i < numChunks; i++ {
		var lo, hi int
		switch i {
		case 0:
			lo, hi = 0, c.chunkSize
		case numChunks - 1:
			lo, hi = len(words)-c.chunkSize, len(words)
		default:
			center := (len(words) / (numChunks - 1)) * i
			lo = center - c.chunkSize/2
			hi = center + c.chunkSize/2
			if lo < 0 {
				lo = 0
			}
			if hi > len(words) {
				hi = len(words)
			}
		}
		chunks = append(chunks, domain.Chunk{Text: strings.Join(words[lo:hi], " ")})
	}
	return chunks
}
