package qa

import "strings"

// ChunkPair splits the combined "Q: ...\nA: ..." form of a pair into
// word-bounded windows. Texts at or under maxWords come back as a single
// chunk. Longer texts are windowed with stride maxWords-overlapWords, floored
// at 1 so an overlap >= maxWords cannot stall the walk. Words are re-joined
// with single spaces.
func ChunkPair(pair Pair, maxWords, overlapWords int) []string {
	combined := pair.Combined()
	words := strings.Fields(combined)
	if len(words) == 0 {
		return nil
	}
	if maxWords <= 0 || len(words) <= maxWords {
		return []string{combined}
	}

	step := maxWords - overlapWords
	if step < 1 {
		step = 1
	}

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
