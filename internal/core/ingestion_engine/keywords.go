package ingestion_engine

import (
	"sort"
	"strings"
	"unicode"
)

const maxKeywords = 20

// ExtractKeywords computes a lightweight frequency-based keyword list for a
// chunk: lowercase, punctuation stripped, tokens of length <= 3 discarded,
// top 20 by frequency. Ties keep first-seen order so the output is
// deterministic for a given input.
func ExtractKeywords(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	type wordCount struct {
		word  string
		count int
		seen  int // insertion order, used as tie breaker
	}

	counts := make(map[string]*wordCount)
	order := make([]*wordCount, 0, 64)
	for _, w := range strings.Fields(b.String()) {
		if len(w) <= 3 {
			continue
		}
		if wc, ok := counts[w]; ok {
			wc.count++
			continue
		}
		wc := &wordCount{word: w, count: 1, seen: len(order)}
		counts[w] = wc
		order = append(order, wc)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].seen < order[j].seen
	})

	n := maxKeywords
	if n > len(order) {
		n = len(order)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = order[i].word
	}
	return out
}
