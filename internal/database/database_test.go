package database_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydehq/metamatch/internal/database"
	"github.com/mydehq/metamatch/internal/types"
)

var inception = types.Query{Title: "Inception", Year: 2010, Kind: types.MediaKindMovie}

func inceptionPayload() types.Metadata {
	return types.Metadata{
		TMDBID:     27205,
		PosterPath: "https://image.tmdb.org/t/p/w342/poster.jpg",
		TMDBURL:    "https://www.themoviedb.org/movie/27205",
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "inception_2010", database.Key("inception", 2010))
	assert.Equal(t, "untitled_0", database.Key("untitled", 0))
}

func TestStore_PutStampsProvenance(t *testing.T) {
	s := database.NewMemoryStore()
	require.NoError(t, s.Put("inception_2010", inceptionPayload(), types.Query{Title: "  INCEPTION!", Year: 2010, Kind: types.MediaKindMovie}))

	rec, ok := s.Get("inception_2010")
	require.True(t, ok)
	assert.Equal(t, database.SchemaVersion, rec.SchemaVersion)
	assert.Equal(t, "inception", rec.QueryTitleNorm)
	assert.Equal(t, 2010, rec.QueryYear)
	assert.Equal(t, types.MediaKindMovie, rec.QueryKind)
	assert.Equal(t, inceptionPayload(), database.StripProvenance(rec))
	assert.True(t, s.IsValid(rec, inception))
}

func TestStore_IsValid(t *testing.T) {
	s := database.NewMemoryStore()
	require.NoError(t, s.Put("inception_2010", inceptionPayload(), inception))
	rec, _ := s.Get("inception_2010")

	tests := []struct {
		name   string
		mutate func(*types.CacheRecord)
		query  types.Query
		want   bool
	}{
		{"matching provenance", func(*types.CacheRecord) {}, inception, true},
		{"title differing only in punctuation", func(*types.CacheRecord) {}, types.Query{Title: "Inception.", Year: 2010, Kind: types.MediaKindMovie}, true},
		{"previous schema version", func(r *types.CacheRecord) { r.SchemaVersion = database.SchemaVersion - 1 }, inception, false},
		{"missing schema version", func(r *types.CacheRecord) { r.SchemaVersion = 0 }, inception, false},
		{"title changed", func(*types.CacheRecord) {}, types.Query{Title: "Interstellar", Year: 2010, Kind: types.MediaKindMovie}, false},
		{"year changed", func(*types.CacheRecord) {}, types.Query{Title: "Inception", Year: 2011, Kind: types.MediaKindMovie}, false},
		{"kind changed", func(*types.CacheRecord) {}, types.Query{Title: "Inception", Year: 2010, Kind: types.MediaKindTV}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := *rec
			tt.mutate(&cp)
			assert.Equal(t, tt.want, s.IsValid(&cp, tt.query))
		})
	}

	assert.False(t, s.IsValid(nil, inception))
}

func TestStore_ForceRefreshInvalidatesEverything(t *testing.T) {
	s := database.NewMemoryStore(database.WithForceRefresh(true))
	require.NoError(t, s.Put("inception_2010", inceptionPayload(), inception))

	rec, ok := s.Get("inception_2010")
	require.True(t, ok)
	assert.False(t, s.IsValid(rec, inception))
	assert.True(t, s.ForceRefresh())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := database.NewMemoryStore()
	require.NoError(t, s.Put("k", inceptionPayload(), inception))

	rec, _ := s.Get("k")
	rec.PosterPath = "mutated"

	again, _ := s.Get("k")
	assert.Equal(t, inceptionPayload().PosterPath, again.PosterPath)
}

func TestOpen_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "external-data.json")

	s, err := database.Open(path)
	require.NoError(t, err)
	assert.Zero(t, s.Len())
	assert.NoError(t, s.LoadWarning())
	assert.Equal(t, path, s.Path())
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := database.Open("")
	assert.Error(t, err)
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "external-data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"inception_2010": {`), 0644))

	var buf bytes.Buffer
	s, err := database.Open(path, database.WithLogger(log.New(&buf)))
	require.NoError(t, err)
	assert.Zero(t, s.Len())

	var parseErr types.ErrCacheParse
	require.True(t, errors.As(s.LoadWarning(), &parseErr))
	assert.Equal(t, path, parseErr.Path)
	assert.Contains(t, buf.String(), "corrupt")
}

func TestOpen_SkipsUnreadableRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "external-data.json")
	content := fmt.Sprintf(`{
  "heat_1995": {
    "tmdb_id": 949,
    "letterboxd_url": "https://letterboxd.com/film/heat-1995/",
    "cache_version": %d,
    "query_title_norm": "heat",
    "query_year": 1995,
    "query_type": "movie"
  },
  "odd_2001": {
    "rawg_id": 12,
    "metacritic_score": 85.5,
    "cache_version": %d
  }
}`, database.SchemaVersion, database.SchemaVersion)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	var buf bytes.Buffer
	s, err := database.Open(path, database.WithLogger(log.New(&buf)))
	require.NoError(t, err)
	assert.NoError(t, s.LoadWarning(), "one bad record does not mark the file corrupt")
	assert.Equal(t, []string{"heat_1995"}, s.Keys())
	assert.Contains(t, buf.String(), "odd_2001")

	heat := types.Query{Title: "Heat", Year: 1995, Kind: types.MediaKindMovie}
	rec, ok := s.Get("heat_1995")
	require.True(t, ok)
	assert.True(t, s.IsValid(rec, heat))
	assert.Equal(t, int64(949), rec.TMDBID)

	require.NoError(t, s.Put("new_2020", types.Metadata{TMDBID: 1}, types.Query{Title: "New", Year: 2020, Kind: types.MediaKindMovie}))

	reopened, err := database.Open(path, database.WithLogger(log.New(io.Discard)))
	require.NoError(t, err)
	assert.Equal(t, []string{"heat_1995", "new_2020"}, reopened.Keys())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, 85.5, onDisk["odd_2001"]["metacritic_score"], "unreadable record is written back as is")
	assert.Equal(t, "https://letterboxd.com/film/heat-1995/", onDisk["heat_1995"]["letterboxd_url"], "unknown fields survive a rewrite")
}

func TestOpen_NullRecordIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "external-data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"gone_1999": null}`), 0644))

	s, err := database.Open(path)
	require.NoError(t, err)
	assert.Zero(t, s.Len())
	assert.NoError(t, s.LoadWarning())
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cache", "external-data.json")

	s, err := database.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("inception_2010", inceptionPayload(), inception))
	require.NoError(t, s.Put("hades_2020", types.Metadata{RAWGID: 274755}, types.Query{Title: "Hades", Year: 2020, Kind: types.MediaKindGame}))

	reopened, err := database.Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hades_2020", "inception_2010"}, reopened.Keys())

	rec, ok := reopened.Get("inception_2010")
	require.True(t, ok)
	assert.True(t, reopened.IsValid(rec, inception))
	assert.Equal(t, inceptionPayload(), database.StripProvenance(rec))
}

func TestStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "external-data.json")

	s, err := database.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("inception_2010", types.Metadata{TMDBID: 27205}, inception))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"inception_2010\": {\n    ", "two-space indentation")

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]any{
		"tmdb_id":          float64(27205),
		"cache_version":    float64(database.SchemaVersion),
		"query_title_norm": "inception",
		"query_year":       float64(2010),
		"query_type":       "movie",
	}, raw["inception_2010"])
}

func TestOpen_ReadsExistingCacheFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "external-data.json")
	content := `{
  "dune-part-two_2024": {
    "tmdb_id": 693134,
    "poster_path": "https://image.tmdb.org/t/p/w342/dune.jpg",
    "card_image": null,
    "official_description": "Paul Atreides unites with the Fremen.",
    "tmdb_rating": 8.2,
    "cache_version": 4,
    "query_title_norm": "dune part two",
    "query_year": 2024,
    "query_type": "movie"
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := database.Open(path)
	require.NoError(t, err)

	rec, ok := s.Get("dune-part-two_2024")
	require.True(t, ok)
	assert.Equal(t, int64(693134), rec.TMDBID)
	assert.Empty(t, rec.CardImage)
	assert.False(t, s.IsValid(rec, types.Query{Title: "Dune: Part Two", Year: 2024, Kind: types.MediaKindMovie}), "older schema is stale")
}

func TestSearch(t *testing.T) {
	s := database.NewMemoryStore()
	for key, q := range map[string]types.Query{
		"inception_2010":    inception,
		"interstellar_2014": {Title: "Interstellar", Year: 2014, Kind: types.MediaKindMovie},
		"hades_2020":        {Title: "Hades", Year: 2020, Kind: types.MediaKindGame},
	} {
		require.NoError(t, s.Put(key, types.Metadata{TMDBID: 1}, q))
	}

	assert.Equal(t, []string{"inception_2010"}, database.Search(s, "incep"))
	assert.Equal(t, []string{"hades_2020"}, database.Search(s, "HADES"))
	assert.Equal(t, []string{"hades_2020", "inception_2010", "interstellar_2014"}, database.Search(s, ""))
	assert.Empty(t, database.Search(s, "zzz"))
}
