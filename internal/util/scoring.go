package util

import "github.com/sahilm/fuzzy"

// ScoreCompletions returns the top N matches for the input string from the candidates list.
func ScoreCompletions(input string, candidates []string, n int) []string {
	if input == "" {
		return candidates
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return nil
	}

	limit := n
	if n <= 0 || len(matches) < limit {
		limit = len(matches)
	}

	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].Str
	}
	return out
}

// RankIndexes orders candidate indexes by fuzzy score against input, best
// first. Candidates that do not fuzzy-match keep their original order after
// the matches.
func RankIndexes(input string, candidates []string) []int {
	out := make([]int, 0, len(candidates))
	seen := make(map[int]bool, len(candidates))
	if input != "" {
		for _, m := range fuzzy.Find(input, candidates) {
			out = append(out, m.Index)
			seen[m.Index] = true
		}
	}
	for i := range candidates {
		if !seen[i] {
			out = append(out, i)
		}
	}
	return out
}
