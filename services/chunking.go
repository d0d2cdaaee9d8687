package services

import (
	"regexp"
	"strings"
)

var sentenceEndRegex = regexp.MustCompile(`[.!?]+`)

// ChunkText splits text into sentence-aligned chunks. Sentences are
// delimited by ., ! or ?; empty fragments are dropped. Sentences are
// greedily packed while the accumulated chunk stays within maxLength,
// and the last partial chunk is always flushed. Boundaries fall only
// at sentence ends, so no sentence is ever split mid-way; a single
// sentence longer than maxLength forms its own oversized chunk.
func ChunkText(text string, maxLength int) []string {
	fragments := sentenceEndRegex.Split(text, -1)

	sentences := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if s := strings.TrimSpace(fragment); s != "" {
			sentences = append(sentences, s)
		}
	}

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		if len(current)+len(sentence) <= maxLength {
			current += sentence + ". "
		} else {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = sentence + ". "
		}
	}
	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}
