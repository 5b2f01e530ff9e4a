package filters

import "sort"

// Score is one (filter index, accumulated score) entry.
type Score struct {
	Index int
	Score int
}

// Scorer ranks filter indices by accumulated residual score. It backs
// both the per-tile tournament and the global award aggregation of the
// filter design pass.
type Scorer struct {
	scores []Score
	sorted []Score // scratch for GetTop
}

// NewScorer creates a scorer over n filter indices.
func NewScorer(n int) *Scorer {
	s := &Scorer{
		scores: make([]Score, n),
		sorted: make([]Score, n),
	}
	s.Reset()
	return s
}

// Reset zeroes all scores.
func (s *Scorer) Reset() {
	for i := range s.scores {
		s.scores[i] = Score{Index: i}
	}
}

// Add accumulates score onto filter index i.
func (s *Scorer) Add(i, score int) {
	s.scores[i].Score += score
}

// GetTop returns the k best entries. With descending=false the lowest
// scores rank first (residual penalties); with descending=true the
// highest rank first (awards). Ties break by lower index, stably.
func (s *Scorer) GetTop(k int, descending bool) []Score {
	copy(s.sorted, s.scores)
	sort.SliceStable(s.sorted, func(a, b int) bool {
		sa, sb := s.sorted[a], s.sorted[b]
		if sa.Score != sb.Score {
			if descending {
				return sa.Score > sb.Score
			}
			return sa.Score < sb.Score
		}
		return sa.Index < sb.Index
	})
	if k > len(s.sorted) {
		k = len(s.sorted)
	}
	return s.sorted[:k]
}

// residualScore maps a mod-256 residual byte to a monotone magnitude
// penalty: zero for a perfect prediction, rising toward 128 for the
// worst miss in either direction.
var residualScore [256]int

func init() {
	for i := 0; i < 256; i++ {
		if i < 128 {
			residualScore[i] = i
		} else {
			residualScore[i] = 256 - i
		}
	}
}

// ResidualScore returns the penalty for one residual byte.
func ResidualScore(r uint8) int {
	return residualScore[r]
}
