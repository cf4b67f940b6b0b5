package distance

import "strings"

// separators splits both query and candidate strings into tokens. Unlike a
// stop-word tokenizer, consecutive separators are meaningful: they produce
// empty tokens that still take part in scoring.
const separators = " .->"

// ignored is the set of characters that cost nothing to substitute —
// accelerator underscores and the breadcrumb arrow chief among them. Adding
// or dropping one of them is charged the ordinary add/drop penalty. The full
// set is scanned on every comparison; nothing here is capped to a fixed byte
// count.
const ignored = " _->"

// Tokenize splits s on any separator character, keeping empty tokens so that
// runs of separators are preserved as zero-length entries (they still score,
// via the empty-token fast paths in tokenDistance).
func Tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	for _, r := range s {
		if strings.ContainsRune(separators, r) {
			tokens = append(tokens, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	tokens = append(tokens, cur.String())
	return tokens
}

func isIgnored(r rune) bool {
	return strings.ContainsRune(ignored, r)
}
