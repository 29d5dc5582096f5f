package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaKind(t *testing.T) {
	tests := []struct {
		input   string
		want    MediaKind
		wantErr bool
	}{
		{"movie", MediaKindMovie, false},
		{" TV ", MediaKindTV, false},
		{"Game", MediaKindGame, false},
		{"anime", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMediaKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetadata_IsEmpty(t *testing.T) {
	assert.True(t, Metadata{}.IsEmpty())
	assert.False(t, Metadata{TMDBID: 27205}.IsEmpty())
	assert.False(t, Metadata{TrailerURL: "https://www.youtube.com/watch?v=x"}.IsEmpty())
}

func TestMetadata_Merge(t *testing.T) {
	base := Metadata{TMDBID: 27205, PosterPath: "poster.jpg", TMDBRating: Rating(8.4)}
	base.Merge(Metadata{PosterPath: "", TrailerURL: "https://www.youtube.com/watch?v=abc", TrailerID: "abc"})

	assert.Equal(t, int64(27205), base.TMDBID)
	assert.Equal(t, "poster.jpg", base.PosterPath, "empty fields must not clear existing values")
	assert.Equal(t, "abc", base.TrailerID)
	assert.Equal(t, 8.4, *base.TMDBRating, "unset rating keeps the existing one")

	base.Merge(Metadata{TMDBRating: Rating(0)})
	assert.Zero(t, *base.TMDBRating, "a reported zero rating replaces the old one")
}

func TestMetadata_FieldsKeepsZeroRating(t *testing.T) {
	fields := Metadata{TMDBID: 1, TMDBRating: Rating(0)}.Fields()

	require.Contains(t, fields, "tmdb_rating")
	assert.Equal(t, float64(0), fields["tmdb_rating"])
	assert.NotContains(t, Metadata{TMDBID: 1}.Fields(), "tmdb_rating")
}

func TestMetadata_Fields(t *testing.T) {
	fields := Metadata{TMDBID: 27205, OfficialDescription: "A thief who steals secrets."}.Fields()

	assert.Len(t, fields, 2)
	assert.Equal(t, float64(27205), fields["tmdb_id"])
	assert.Equal(t, "A thief who steals secrets.", fields["official_description"])
	assert.NotContains(t, fields, "poster_path")
}

func TestEntry_Query(t *testing.T) {
	e := Entry{Identifier: "inception", Title: "Inception", Kind: MediaKindMovie, ReleaseYear: 2010}
	assert.Equal(t, Query{Title: "Inception", Year: 2010, Kind: MediaKindMovie}, e.Query())
}
