package matcher

import (
	"math"
	"strconv"
	"strings"
)

// Title scoring weights
const (
	titleRejectScore   = -1000
	titleExactScore    = 200
	titleContainsBonus = 45
	titlePrefixBonus   = 25
	titleOverlapWeight = 60
	extraTokenPenalty  = 8
)

// ScoreTitleMatch scores how well a candidate title matches the query title.
// Scores range from -1000 (unusable) to 200 (exact normalized match).
func ScoreTitleMatch(queryTitle, candidateTitle string) int {
	query := NormalizeTitle(queryTitle)
	candidate := NormalizeTitle(candidateTitle)

	if query == "" || candidate == "" {
		return titleRejectScore
	}
	if query == candidate {
		return titleExactScore
	}

	score := 0
	if strings.Contains(candidate, query) || strings.Contains(query, candidate) {
		score += titleContainsBonus
	}
	if strings.HasPrefix(candidate, query) || strings.HasPrefix(query, candidate) {
		score += titlePrefixBonus
	}

	qTokens := tokenSet(query)
	cTokens := tokenSet(candidate)

	score += int(math.Round(overlapFraction(qTokens, cTokens) * titleOverlapWeight))
	score -= max(0, len(cTokens)-len(qTokens)) * extraTokenPenalty
	return score
}

// TokenOverlap returns the fraction of the query title's words found in the
// candidate title, both normalized. An empty query yields 0.
func TokenOverlap(queryTitle, candidateTitle string) float64 {
	return overlapFraction(tokenSet(NormalizeTitle(queryTitle)), tokenSet(NormalizeTitle(candidateTitle)))
}

func overlapFraction(query, candidate map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	overlap := 0
	for tok := range query {
		if _, ok := candidate[tok]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(query))
}

// ParseYear extracts a year from the first four characters of a date-like value.
// It returns 0 when no year can be read.
func ParseYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// ScoreYearMatch scores the distance between the expected year and the candidate's date.
// A missing year on either side is neutral.
func ScoreYearMatch(expectedYear int, candidateDate string) int {
	candidateYear := ParseYear(candidateDate)
	if expectedYear <= 0 || candidateYear == 0 {
		return 0
	}

	diff := expectedYear - candidateYear
	if diff < 0 {
		diff = -diff
	}

	switch diff {
	case 0:
		return 25
	case 1:
		return 10
	case 2:
		return 3
	}
	return -min(20, diff*5)
}

// PopularityScore converts a raw popularity signal (vote or rating counts)
// into a bonus capped at 10. Negative signals score 0 instead of the negative
// round(raw/1000) the plain formula would give; counts are never negative.
func PopularityScore(raw float64) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return 0
	}
	return min(10, int(math.Round(raw/1000)))
}
