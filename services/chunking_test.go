package services

import (
	"strings"
	"testing"
)

func sentencesOf(text string) []string {
	fragments := sentenceEndRegex.Split(text, -1)
	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if s := strings.TrimSpace(f); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func TestChunkTextPreservesSentenceSequence(t *testing.T) {
	text := "Arrays store elements contiguously. Access is O(1) by index! Insertion can be O(n)? Binary search halves the interval. The complexity is O(log n)."

	chunks := ChunkText(text, 60)
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	// Concatenating the chunks must reconstruct the original sentence
	// sequence, modulo the punctuation the chunker re-adds.
	got := sentencesOf(strings.Join(chunks, " "))
	want := sentencesOf(text)
	if len(got) != len(want) {
		t.Fatalf("sentence count mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunkTextRespectsMaxLength(t *testing.T) {
	text := "One short sentence. Another short sentence. A third one here. And a fourth to round it out."
	maxLen := 50

	for i, chunk := range ChunkText(text, maxLen) {
		// The trailing ". " accounts for up to two extra characters
		// beyond the greedy bound.
		if len(chunk) > maxLen+2 {
			t.Errorf("chunk %d exceeds max length: %d chars: %q", i, len(chunk), chunk)
		}
	}
}

func TestChunkTextOversizedSentenceFormsOwnChunk(t *testing.T) {
	long := "this single sentence is far longer than the configured maximum chunk size and cannot be split"
	text := "Short one. " + long + ". Short two."

	chunks := ChunkText(text, 20)

	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk, long) {
			found = true
			if strings.Contains(chunk, "Short one") || strings.Contains(chunk, "Short two") {
				t.Errorf("oversized sentence should stand alone, got %q", chunk)
			}
		}
	}
	if !found {
		t.Fatal("oversized sentence missing from chunks")
	}
}

func TestChunkTextEmptyAndPunctuationOnlyInput(t *testing.T) {
	if chunks := ChunkText("", 100); len(chunks) != 0 {
		t.Errorf("empty input: expected no chunks, got %v", chunks)
	}
	if chunks := ChunkText("...!!!???", 100); len(chunks) != 0 {
		t.Errorf("punctuation-only input: expected no chunks, got %v", chunks)
	}
}
