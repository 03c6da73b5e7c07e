package ingestion_engine

import "strings"

// defaultSeparators orders split points from the largest structurally
// meaningful unit down to individual characters.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter segments document text into bounded chunks using a
// separator-priority policy: paragraph breaks first, then line breaks, then
// spaces, then character-level force splitting for indivisible units.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{chunkSize: chunkSize, overlap: overlap, separators: defaultSeparators}
}

// Split returns ordered chunks of at most chunkSize characters, with roughly
// overlap characters shared between consecutive chunks. Non-empty input
// always yields at least one chunk.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	chunks := s.split(text, s.separators)
	if len(chunks) == 0 {
		chunks = []string{strings.TrimSpace(text)}
	}
	return chunks
}

func (s *Splitter) split(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, sp := range separators {
		if sp == "" || strings.Contains(text, sp) {
			sep = sp
			rest = separators[i+1:]
			break
		}
	}
	if sep == "" {
		return s.hardSplit(text)
	}

	var final []string
	var pending []string // parts under the size bound, awaiting merge
	for _, part := range strings.Split(text, sep) {
		if len(part) < s.chunkSize {
			pending = append(pending, part)
			continue
		}
		// Oversized part: flush the pending run, then retry the part with
		// the finer-grained separators.
		if len(pending) > 0 {
			final = append(final, s.merge(pending, sep)...)
			pending = nil
		}
		final = append(final, s.split(part, rest)...)
	}
	if len(pending) > 0 {
		final = append(final, s.merge(pending, sep)...)
	}
	return final
}

// merge greedily joins parts into chunks within the size bound. Each new
// chunk is seeded with the tail of the previous one so context survives the
// boundary, unless carrying the tail would push the chunk over the bound.
func (s *Splitter) merge(parts []string, sep string) []string {
	var chunks []string
	var current []string
	total := 0
	for _, p := range parts {
		add := len(p)
		if len(current) > 0 {
			add += len(sep)
		}
		if total+add > s.chunkSize && len(current) > 0 {
			chunk := strings.Join(current, sep)
			if trimmed := strings.TrimSpace(chunk); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			current, total = current[:0], 0
			if s.overlap > 0 {
				tail := tailRunes(chunk, s.overlap)
				if len(tail)+len(sep)+len(p) <= s.chunkSize {
					current = append(current, tail)
					total = len(tail)
				}
			}
			add = len(p)
			if len(current) > 0 {
				add += len(sep)
			}
		}
		current = append(current, p)
		total += add
	}
	if len(current) > 0 {
		if trimmed := strings.TrimSpace(strings.Join(current, sep)); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}
	return chunks
}

// hardSplit is the last-resort character-level split for text with no usable
// separator at all.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	stride := s.chunkSize - s.overlap
	if stride <= 0 {
		stride = s.chunkSize
	}
	var out []string
	for start := 0; start < len(runes); start += stride {
		end := start + s.chunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

func tailRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
