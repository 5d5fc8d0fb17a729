package qa

import "strings"

// Pair is one normalized question/answer unit. Both fields are non-empty
// after trimming for every Pair produced by this package.
type Pair struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// Combined renders the pair in its canonical chunkable form.
func (p Pair) Combined() string {
	return strings.TrimSpace("Q: " + p.Question + "\nA: " + p.Answer)
}
