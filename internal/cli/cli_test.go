package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydehq/metamatch"
	"github.com/mydehq/metamatch/internal/types"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Key", "Year"},
		[][]string{{"inception_2010", "2010"}, {"short"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	assert.Contains(t, out, "inception_2010")
	assert.Contains(t, out, "KEY")
	assert.Equal(t, 6, strings.Count(out, "\n")+1, "top border, header, separator, two rows, bottom border")
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestRenderMatch_MarksBest(t *testing.T) {
	best := metamatch.Scored{
		Candidate:  types.Candidate{ProviderID: "27205", Title: "Inception", Date: "2010-07-15"},
		TitleScore: 100, YearScore: 30, PopularityScore: 18, TotalScore: 148,
	}
	other := metamatch.Scored{
		Candidate:  types.Candidate{ProviderID: "64956", Title: "Inception: The Cobol Job", Date: "2010-12-07"},
		TitleScore: 50, YearScore: 30, PopularityScore: 10, TotalScore: 90,
	}

	out := renderMatch(&metamatch.MatchResult{Provider: "tmdb-movie", Ranked: []metamatch.Scored{best, other}, Best: &best})

	lines := strings.Split(out, "\n")
	var bestLine, otherLine string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "27205"):
			bestLine = l
		case strings.Contains(l, "64956"):
			otherLine = l
		}
	}
	assert.Contains(t, bestLine, "*")
	assert.Contains(t, bestLine, "148")
	assert.NotContains(t, otherLine, "*")
}

func TestRecordYAML_UsesPersistedNames(t *testing.T) {
	rec := &metamatch.CacheRecord{
		Metadata:       types.Metadata{TMDBID: 27205, TMDBURL: "https://www.themoviedb.org/movie/27205"},
		SchemaVersion:  5,
		QueryTitleNorm: "inception",
		QueryYear:      2010,
		QueryKind:      types.MediaKindMovie,
	}

	out, err := recordYAML(rec)
	require.NoError(t, err)

	assert.Contains(t, out, "tmdb_id: 27205")
	assert.Contains(t, out, "tmdb_url: https://www.themoviedb.org/movie/27205")
	assert.Contains(t, out, "query_title_norm: inception")
	assert.Contains(t, out, "cache_version: 5")
	assert.NotContains(t, out, "poster_path")
}
