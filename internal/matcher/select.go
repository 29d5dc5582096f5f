package matcher

import "github.com/mydehq/metamatch/internal/types"

// Selection thresholds
const (
	// MinTitleScore is the hard floor below which a candidate is never considered
	MinTitleScore = 20

	// weakTitleScore and weakTotalScore reject a winner that only scraped
	// past the floor on year or popularity
	weakTitleScore = 40
	weakTotalScore = 60
)

// Accessors tell the selector how to read a provider-specific candidate
type Accessors[T any] struct {
	Title      func(T) string
	Date       func(T) string
	Popularity func(T) float64
}

// CandidateAccessors reads the shared types.Candidate shape
var CandidateAccessors = Accessors[types.Candidate]{
	Title:      func(c types.Candidate) string { return c.Title },
	Date:       func(c types.Candidate) string { return c.Date },
	Popularity: func(c types.Candidate) float64 { return c.Popularity },
}

// Scored is a candidate together with its score breakdown
type Scored[T any] struct {
	Candidate       T
	TitleScore      int
	YearScore       int
	PopularityScore int
	TotalScore      int
}

// Score computes the full breakdown for a single candidate
func Score[T any](candidate T, q types.Query, acc Accessors[T]) Scored[T] {
	s := Scored[T]{
		Candidate:  candidate,
		TitleScore: ScoreTitleMatch(q.Title, acc.Title(candidate)),
	}
	if acc.Date != nil {
		s.YearScore = ScoreYearMatch(q.Year, acc.Date(candidate))
	}
	if acc.Popularity != nil {
		s.PopularityScore = PopularityScore(acc.Popularity(candidate))
	}
	s.TotalScore = s.TitleScore + s.YearScore + s.PopularityScore
	return s
}

// Rank scores every candidate that clears the title floor, in input order
func Rank[T any](candidates []T, q types.Query, acc Accessors[T]) []Scored[T] {
	var ranked []Scored[T]
	for _, c := range candidates {
		s := Score(c, q, acc)
		if s.TitleScore < MinTitleScore {
			continue
		}
		ranked = append(ranked, s)
	}
	return ranked
}

// PickBest returns the highest scoring candidate, or false when none is
// confident enough. Ties keep the first candidate seen.
func PickBest[T any](candidates []T, q types.Query, acc Accessors[T]) (T, bool) {
	var zero T

	best, ok := Best(Rank(candidates, q, acc))
	if !ok {
		return zero, false
	}
	return best.Candidate, true
}

// Best picks the winner from ranked candidates, applying the weak-match rule
func Best[T any](ranked []Scored[T]) (Scored[T], bool) {
	var best Scored[T]
	found := false

	for _, s := range ranked {
		if !found || s.TotalScore > best.TotalScore {
			best = s
			found = true
		}
	}

	if !found {
		return best, false
	}
	if best.TitleScore < weakTitleScore && best.TotalScore < weakTotalScore {
		return best, false
	}
	return best, true
}

// Accepted reports whether s would be accepted as a winner on its own merits
func Accepted[T any](s Scored[T]) bool {
	return s.TitleScore >= MinTitleScore &&
		(s.TitleScore >= weakTitleScore || s.TotalScore >= weakTotalScore)
}
