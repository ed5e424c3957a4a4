package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreCompletions(t *testing.T) {
	names := []string{"Invoice", "Report", "Letter"}

	assert.Equal(t, names, ScoreCompletions("", names, 2))
	assert.Nil(t, ScoreCompletions("zzz", names, 2))
	assert.Equal(t, []string{"Report"}, ScoreCompletions("rep", names, 5))
	assert.Len(t, ScoreCompletions("e", names, 1), 1)
}

func TestRankIndexesKeepsUnmatchedOrder(t *testing.T) {
	names := []string{"Invoice", "Report", "Letter"}

	assert.Equal(t, []int{1, 0, 2}, RankIndexes("rep", names))
	assert.Equal(t, []int{0, 1, 2}, RankIndexes("", names))
	assert.Equal(t, []int{0, 1, 2}, RankIndexes("zzz", names))
}
