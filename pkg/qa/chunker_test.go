package qa

import (
	"fmt"
	"strings"
	"testing"
)

func wordsOfLength(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunkPairShortText(t *testing.T) {
	pair := Pair{Question: "How do I reset my password?", Answer: "Use the reset link on the login page."}

	chunks := ChunkPair(pair, 300, 50)

	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0] != pair.Combined() {
		t.Errorf("chunk = %q, want combined form %q", chunks[0], pair.Combined())
	}
}

func TestChunkPairWindows(t *testing.T) {
	// Combined text is "Q:" + 448 words + "A:" + 450 words = 900 words.
	pair := Pair{Question: wordsOfLength(448), Answer: wordsOfLength(450)}
	combinedWords := strings.Fields(pair.Combined())
	if len(combinedWords) != 900 {
		t.Fatalf("setup: combined word count = %d, want 900", len(combinedWords))
	}

	chunks := ChunkPair(pair, 300, 50)

	// stride 250 over 900 words: windows at 0, 250, 500, 750.
	if len(chunks) != 4 {
		t.Fatalf("chunks = %d, want 4", len(chunks))
	}
	for i, chunk := range chunks[:3] {
		if got := len(strings.Fields(chunk)); got != 300 {
			t.Errorf("chunk %d word count = %d, want 300", i, got)
		}
	}
	if got := len(strings.Fields(chunks[3])); got != 150 {
		t.Errorf("last chunk word count = %d, want 150", got)
	}

	// Consecutive windows share the overlap region.
	prevTail := strings.Fields(chunks[0])[250:]
	nextHead := strings.Fields(chunks[1])[:50]
	for i := range prevTail {
		if prevTail[i] != nextHead[i] {
			t.Fatalf("overlap mismatch at %d: %q vs %q", i, prevTail[i], nextHead[i])
		}
	}

	// Stitching the windows back together (dropping each overlap) must
	// reproduce the original word sequence.
	var rebuilt []string
	for i, chunk := range chunks {
		words := strings.Fields(chunk)
		if i > 0 {
			words = words[50:]
		}
		rebuilt = append(rebuilt, words...)
	}
	if len(rebuilt) != len(combinedWords) {
		t.Fatalf("rebuilt word count = %d, want %d", len(rebuilt), len(combinedWords))
	}
	for i := range rebuilt {
		if rebuilt[i] != combinedWords[i] {
			t.Fatalf("rebuilt[%d] = %q, want %q", i, rebuilt[i], combinedWords[i])
		}
	}
}

func TestChunkPairStrideFloor(t *testing.T) {
	tests := []struct {
		name     string
		maxWords int
		overlap  int
	}{
		{name: "overlap equals window", maxWords: 10, overlap: 10},
		{name: "overlap exceeds window", maxWords: 10, overlap: 25},
	}

	pair := Pair{Question: wordsOfLength(20), Answer: wordsOfLength(20)}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkPair(pair, tt.maxWords, tt.overlap)
			// A degenerate overlap falls back to stride 1, which must still
			// terminate and cover the text.
			total := len(strings.Fields(pair.Combined()))
			want := total - tt.maxWords + 1
			if len(chunks) != want {
				t.Errorf("chunks = %d, want %d", len(chunks), want)
			}
			last := strings.Fields(chunks[len(chunks)-1])
			combined := strings.Fields(pair.Combined())
			if last[len(last)-1] != combined[len(combined)-1] {
				t.Errorf("last chunk does not end at final word")
			}
		})
	}
}
