// Package distance implements the fuzzy string-distance scorer: a weighted,
// tokenized edit distance between a user's query and a candidate menu
// display string, including the asymmetric add/drop penalties that make
// prefix-style queries score well against long menu paths.
package distance

import (
	"errors"
	"math"
	"strings"
	"unicode"

	"github.com/ayatana-go/menuhud/internal/settings"
)

// ErrNoInput is returned when both query and haystack are absent — the
// scorer's precondition failure. Callers that hit this should treat the
// sentinel MaxUint64 distance as "never match".
var ErrNoInput = errors.New("distance: query and haystack both absent")

// MaxDistance is the sentinel returned alongside ErrNoInput.
const MaxDistance = math.MaxUint64

// Score computes the penalty between query and candidate, a single display
// string such as the tree walker's "A > B > C" ancestry path. A nil query or
// nil candidate triggers the null-symmetry edge cases (§4.1): a nil query
// costs drop_penalty per candidate rune, a nil candidate costs add_penalty
// per query rune, and both nil is a caller error.
func Score(cfg *settings.Settings, query, candidate *string) (uint64, []string, error) {
	switch {
	case query == nil && candidate == nil:
		return MaxDistance, nil, ErrNoInput
	case query == nil:
		return uint64(len([]rune(*candidate))) * cfg.DropPenalty, nil, nil
	case candidate == nil:
		return uint64(len([]rune(*query))) * cfg.AddPenalty, nil, nil
	}

	needleTokens := Tokenize(*query)
	haystackTokens := Tokenize(*candidate)

	matches := make([]string, len(needleTokens))
	var total uint64
	for i, needle := range needleTokens {
		best := uint64(math.MaxUint64)
		bestMatch := ""
		for _, haystack := range haystackTokens {
			d := tokenDistance(cfg, needle, haystack)
			if d < best {
				best = d
				bestMatch = haystack
			}
		}
		total += best
		matches[i] = bestMatch
	}

	if len(needleTokens) == 0 {
		return 0, matches, nil
	}
	return total / uint64(len(needleTokens)), matches, nil
}

// ScorePath is Score against an ancestry path vector instead of an
// already-joined display string: the vector is joined with " > " first, as
// the tree walker's own candidates are.
func ScorePath(cfg *settings.Settings, query *string, path []string) (uint64, []string, error) {
	if path == nil {
		return Score(cfg, query, nil)
	}
	joined := strings.Join(path, " > ")
	return Score(cfg, query, &joined)
}

// swapCost is the cost of aligning needle rune a with haystack rune b: free
// if equal or either is an ignored character, a small fraction of
// SwapPenalty if equal modulo case folding, else the full SwapPenalty.
func swapCost(cfg *settings.Settings, a, b rune) uint64 {
	if a == b {
		return 0
	}
	if isIgnored(a) || isIgnored(b) {
		return 0
	}
	if unicode.ToUpper(a) == unicode.ToUpper(b) {
		return cfg.SwapPenaltyCase
	}
	return cfg.SwapPenalty
}

// tokenDistance computes the weighted edit distance between a single query
// token (needle) and a single candidate token (haystack) per §4.1's dynamic
// program. Both empty-token fast paths are handled before the matrix is
// built.
func tokenDistance(cfg *settings.Settings, needle, haystack string) uint64 {
	n := []rune(needle)
	h := []rune(haystack)
	ln := len(n)
	lh := len(h)

	if ln == 0 {
		return uint64(lh) * cfg.DropPenalty
	}
	if lh == 0 {
		return uint64(ln) * cfg.AddPenalty
	}

	// M[i,j] for i in [-1, ln-1], j in [-1, lh-1], stored with a +1 offset
	// so index -1 becomes 0.
	cols := lh + 1
	m := make([]uint64, (ln+1)*cols)
	at := func(i, j int) int { return (i+1)*cols + (j + 1) }

	m[at(-1, -1)] = 0

	// Needle boundary: M[i,-1] = (i+1) * add_penalty.
	for i := 0; i < ln; i++ {
		m[at(i, -1)] = uint64(i+1) * cfg.AddPenalty
	}

	// Haystack boundary: the first (lh-ln) leading positions are cheap
	// (add_penalty_pre); the remainder cost drop_penalty. If lh <= ln,
	// every leading position costs drop_penalty.
	leadLen := 0
	if lh > ln {
		leadLen = lh - ln
	}
	var cum uint64
	for j := 0; j < lh; j++ {
		if j < leadLen {
			cum += cfg.AddPenaltyPre
		} else {
			cum += cfg.DropPenalty
		}
		m[at(-1, j)] = cum
	}

	for i := 0; i < ln; i++ {
		for j := 0; j < lh; j++ {
			sub := m[at(i-1, j-1)] + swapCost(cfg, n[i], h[j])

			dropCost := cfg.DropPenaltyEnd
			if i < j {
				dropCost = cfg.DropPenalty
			}
			drop := m[at(i-1, j)] + dropCost

			addCost := cfg.AddPenalty
			if lh-ln-i > 0 {
				addCost = cfg.AddPenaltyPre
			}
			add := m[at(i, j-1)] + addCost

			// Transpose only applies to an adjacent swap; coded one worse
			// than drop so it never wins when unavailable.
			transpose := drop + 1
			if i >= 1 && j >= 1 && n[i] == h[j-1] && h[j] == n[i-1] {
				transpose = m[at(i-2, j-2)] + cfg.TransposePenalty
			}

			best := sub
			if drop < best {
				best = drop
			}
			if add < best {
				best = add
			}
			if transpose < best {
				best = transpose
			}
			m[at(i, j)] = best
		}
	}

	return m[at(ln-1, lh-1)]
}
