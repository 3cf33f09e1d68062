package skills

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// EditRatio returns 1 - levenshtein(a, b) / max(len a, len b), measured in runes.
// Two empty strings are identical.
func EditRatio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
