// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import "strings"

// normalize lowercases s and strips everything but letters and digits.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity returns a character-level longest-common-subsequence ratio in
// [0,1] between the normalized forms of a and b. Two strings that normalize
// to empty score 0.0, not 1.0: no characters means no evidence of a match.
func Similarity(a, b string) float64 {
	x, y := normalize(a), normalize(b)
	if len(x) == 0 || len(y) == 0 {
		return 0.0
	}
	l := lcs(x, y)
	return 2.0 * float64(l) / float64(len(x)+len(y))
}

// lcs computes the longest-common-subsequence length with a rolling row.
func lcs(a, b string) int {
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
