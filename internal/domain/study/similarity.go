package study

import (
	"math"
	"strings"
)

// SimilarityThreshold is the minimum ratio accepted as a correct free-text answer.
const SimilarityThreshold = 80

// SimilarityRatio scores two strings from 0 to 100 as 2*LCS/(len(a)+len(b)),
// counted in runes. Insertions and deletions cost one each.
func SimilarityRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return int(math.Round(200 * float64(commonSubsequence(ra, rb)) / float64(total)))
}

func commonSubsequence(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// IsSimilarAnswer compares case-insensitively after trimming. Empty answers never match.
func IsSimilarAnswer(correct, submitted string) (bool, int) {
	correct = strings.ToLower(strings.TrimSpace(correct))
	submitted = strings.ToLower(strings.TrimSpace(submitted))
	if correct == "" || submitted == "" {
		return false, 0
	}
	ratio := SimilarityRatio(correct, submitted)
	return ratio >= SimilarityThreshold, ratio
}
