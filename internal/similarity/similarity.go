// Package similarity implements the string metrics used for fuzzy asset
// and provider resolution.
package similarity

import "strings"

// JaroWinkler returns the Jaro-Winkler similarity of two strings in
// [0,1]: the Jaro metric plus a bonus for a shared prefix of up to four
// characters.
func JaroWinkler(s1, s2 string) float64 {
	if s1 == s2 {
		return 1
	}
	if s1 == "" || s2 == "" {
		return 0
	}
	j := jaro(s1, s2)
	prefix := 0
	for prefix < len(s1) && prefix < len(s2) && prefix < 4 && s1[prefix] == s2[prefix] {
		prefix++
	}
	return j + 0.1*float64(prefix)*(1-j)
}

func jaro(s1, s2 string) float64 {
	r1 := []rune(s1)
	r2 := []rune(s2)
	len1, len2 := len(r1), len(r2)

	window := 0
	if max(len1, len2) > 2 {
		window = max(len1, len2)/2 - 1
	}

	matched1 := make([]bool, len1)
	matched2 := make([]bool, len2)
	matches := 0
	for i := 0; i < len1; i++ {
		start := 0
		if i > window {
			start = i - window
		}
		end := min(i+window+1, len2)
		for j := start; j < end; j++ {
			if matched2[j] || r1[i] != r2[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if r1[i] != r2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(len1) + m/float64(len2) + (m-float64(transpositions)/2)/m) / 3
}

// Enhanced adds substring and prefix bonuses on top of Jaro-Winkler,
// capped at 1. Useful when matching short tickers against long names.
func Enhanced(s1, s2 string) float64 {
	sim := JaroWinkler(s1, s2)
	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		sim += 0.15
	}
	if strings.HasPrefix(s1, s2) || strings.HasPrefix(s2, s1) {
		sim += 0.1
	}
	if sim > 1 {
		sim = 1
	}
	return sim
}
