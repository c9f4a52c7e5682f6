package release

import (
	"github.com/hbollon/go-edlib"
)

// Similarity returns the Jaro-Winkler similarity of two titles after
// CleanTitle normalization.
func Similarity(a, b string) float64 {
	ca, cb := CleanTitle(a), CleanTitle(b)
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 1
	}
	return float64(edlib.JaroWinklerSimilarity(ca, cb))
}
