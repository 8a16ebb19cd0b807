package usecase

import "strings"

// fuzzyThreshold is the largest edit distance at which two words still count as the same.
const fuzzyThreshold = 1

// minFuzzyLength keeps short words exact; "bed" and "bet" are different items.
const minFuzzyLength = 5

// fuzzyContainsKey reports whether every word of key has a near match among words.
func fuzzyContainsKey(words []string, key string) bool {
	keyWords := strings.Fields(key)
	if len(keyWords) == 0 {
		return false
	}
	for _, kw := range keyWords {
		found := false
		for _, w := range words {
			if fuzzyTokenMatch(w, kw, fuzzyThreshold) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	if len(token1) < minFuzzyLength || len(token2) < minFuzzyLength {
		return false
	}

	// Lengths further apart than the threshold cannot match
	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// Two rolling rows instead of the full matrix
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
