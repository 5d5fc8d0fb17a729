package qa

import (
	"encoding/json"
	"strings"
)

// ParsePairs scans model output line by line for the strict Q/A format.
// A `q:`/`question:` prefix opens a question accumulator, `a:`/`answer:` an
// answer accumulator; other non-blank lines are space-joined into whichever
// accumulator is open, answer taking priority. A blank line flushes a
// completed pair; an incomplete pair survives blank lines, so a stray blank
// between a question and its answer does not drop the pair. Malformed output
// simply yields fewer (or zero) pairs.
func ParsePairs(output string) []Pair {
	var pairs []Pair
	var currentQ, currentA string
	var haveQ, haveA bool

	flush := func() {
		if haveQ && haveA && currentQ != "" && currentA != "" {
			pairs = append(pairs, Pair{Question: currentQ, Answer: currentA})
			currentQ, currentA = "", ""
			haveQ, haveA = false, false
		}
	}

	for _, rawLine := range strings.Split(output, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			flush()
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "q:") || strings.HasPrefix(lower, "question:"):
			_, rest, _ := strings.Cut(line, ":")
			currentQ = strings.TrimSpace(rest)
			haveQ = true
		case strings.HasPrefix(lower, "a:") || strings.HasPrefix(lower, "answer:"):
			_, rest, _ := strings.Cut(line, ":")
			currentA = strings.TrimSpace(rest)
			haveA = true
		case haveA:
			currentA = strings.TrimSpace(currentA + " " + line)
		case haveQ:
			currentQ = strings.TrimSpace(currentQ + " " + line)
		}
	}
	flush()
	return pairs
}

// ParsePairsJSON is the fallback parse: the raw output as a JSON array of
// {"question", "answer"} objects. Entries missing either field are dropped;
// non-JSON input yields nil.
func ParsePairsJSON(output string) []Pair {
	var items []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(output), &items); err != nil {
		return nil
	}

	var pairs []Pair
	for _, item := range items {
		q := strings.TrimSpace(item.Question)
		a := strings.TrimSpace(item.Answer)
		if q != "" && a != "" {
			pairs = append(pairs, Pair{Question: q, Answer: a})
		}
	}
	return pairs
}
