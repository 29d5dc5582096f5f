package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydehq/metamatch/internal/config"
	"github.com/mydehq/metamatch/internal/types"
)

type project struct {
	dir        string
	configPath string
	outputPath string
	cachePath  string

	movieSearches atomic.Int32
	gameDetails   atomic.Int32
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvTMDBKey, config.EnvRAWGKey, config.EnvYouTubeKey, config.EnvForceRefresh} {
		t.Setenv(key, "")
	}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// newProject lays out a review site with three entries and a config
// pointing every provider at a local test server.
func newProject(t *testing.T) *project {
	t.Helper()
	clearProviderEnv(t)

	p := &project{dir: t.TempDir()}
	p.configPath = filepath.Join(p.dir, "metamatch.yml")
	p.outputPath = filepath.Join(p.dir, "out", "enriched.json")
	p.cachePath = filepath.Join(p.dir, ".cache", "external-data.json")

	mux := http.NewServeMux()
	mux.HandleFunc("/tmdb/search/movie", func(w http.ResponseWriter, r *http.Request) {
		p.movieSearches.Add(1)
		writeJSON(w, map[string]any{"results": []map[string]any{{
			"id": 27205, "title": "Inception", "release_date": "2010-07-15",
			"poster_path": "/poster.jpg", "overview": "A thief who steals corporate secrets.",
			"vote_average": 8.4, "vote_count": 35000,
		}}})
	})
	mux.HandleFunc("/tmdb/search/tv", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"results": []any{}})
	})
	mux.HandleFunc("/rawg/games", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"results": []map[string]any{
			{"id": 1942, "slug": "hades", "name": "Hades", "released": "2020-09-17", "ratings_count": 4000, "background_image": "https://media.rawg.io/hades.jpg"},
		}})
	})
	mux.HandleFunc("/rawg/games/1942", func(w http.ResponseWriter, r *http.Request) {
		p.gameDetails.Add(1)
		writeJSON(w, map[string]any{
			"id": 1942, "slug": "hades", "name": "Hades", "released": "2020-09-17",
			"background_image": "https://media.rawg.io/hades.jpg", "metacritic": 93,
			"description": "<p>Defy the god of the dead.</p>",
		})
	})
	mux.HandleFunc("/yt/search", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Query().Get("q"), "Inception") {
			writeJSON(w, map[string]any{"items": []any{}})
			return
		}
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"id": map[string]any{"videoId": "YoHD9XEInc0"}, "snippet": map[string]any{"title": "Inception (2010) Official Trailer"}},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	reviews := filepath.Join(p.dir, "reviews")
	require.NoError(t, os.Mkdir(reviews, 0755))
	files := map[string]string{
		"inception.json": `{"slug":"inception","title":"Inception","type":"movie","rating":9.1,"releaseYear":2010,"reviewDate":"2024-05-01"}`,
		"hades.json":     `{"slug":"hades","title":"Hades","type":"game","rating":9.5,"releaseYear":2020,"reviewDate":"2024-06-01","card_image":"/img/hades.jpg"}`,
		"obscure.json":   `{"slug":"obscure","title":"Obscure Show","type":"tv","rating":6,"releaseYear":2019}`,
		"broken.json":    `{"slug":`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(reviews, name), []byte(content), 0644))
	}

	cfg := fmt.Sprintf(`entries:
  dir: %s
  legacy: ""
output: %s
cache:
  path: %s
fetch:
  attempts: 2
  backoff: 1ms
providers:
  tmdb:
    api_key: tmdb-key
    base_url: %s/tmdb
  rawg:
    api_key: rawg-key
    base_url: %s/rawg
  youtube:
    api_key: yt-key
    base_url: %s/yt
`, reviews, p.outputPath, p.cachePath, srv.URL, srv.URL, srv.URL)
	require.NoError(t, os.WriteFile(p.configPath, []byte(cfg), 0644))

	return p
}

func readOutput(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestRun_EndToEnd(t *testing.T) {
	p := newProject(t)

	report, err := Run(context.Background(), WithConfig(p.configPath), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, p.outputPath, report.OutputPath)
	assert.Equal(t, 2, report.Outcomes[OutcomeFetched])
	assert.Equal(t, 1, report.Outcomes[OutcomeLocalOnly])
	assert.Len(t, report.Skipped, 1)
	assert.Equal(t, []string{"rawg", "tmdb-movie", "tmdb-tv"}, report.Providers)

	records := readOutput(t, p.outputPath)
	require.Len(t, records, 3)

	hades, inception, obscure := records[0], records[1], records[2]
	assert.Equal(t, "hades", hades["slug"], "newest review first")
	assert.Equal(t, float64(1942), hades["rawg_id"])
	assert.Equal(t, "/img/hades.jpg", hades["card_image"], "authored card image wins")
	assert.Equal(t, "https://media.rawg.io/hades.jpg", hades["poster_path"])
	assert.Equal(t, "Defy the god of the dead.", hades["official_description"])
	assert.Equal(t, "Must Play", hades["verdict"])
	assert.NotContains(t, hades, "trailer_url")

	assert.Equal(t, "inception", inception["slug"])
	assert.Equal(t, float64(27205), inception["tmdb_id"])
	assert.Equal(t, "https://www.youtube.com/watch?v=YoHD9XEInc0", inception["trailer_url"])
	assert.Equal(t, "Must Watch", inception["verdict"])

	assert.Equal(t, "obscure", obscure["slug"])
	assert.NotContains(t, obscure, "tmdb_id")
	assert.Equal(t, "Average", obscure["verdict"])
}

func TestRun_SecondRunServedFromCache(t *testing.T) {
	p := newProject(t)

	_, err := Run(context.Background(), WithConfig(p.configPath), WithLogger(quietLogger()))
	require.NoError(t, err)
	first := readOutput(t, p.outputPath)

	report, err := Run(context.Background(), WithConfig(p.configPath), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Outcomes[OutcomeCacheHit])
	assert.Equal(t, 1, report.Outcomes[OutcomeLocalOnly])
	assert.Equal(t, int32(1), p.movieSearches.Load())
	assert.Equal(t, int32(1), p.gameDetails.Load())
	assert.Equal(t, first, readOutput(t, p.outputPath), "cached run produces identical output")
}

func TestRun_ForceRefetches(t *testing.T) {
	p := newProject(t)

	_, err := Run(context.Background(), WithConfig(p.configPath), WithLogger(quietLogger()))
	require.NoError(t, err)

	report, err := Run(context.Background(), WithConfig(p.configPath), WithForce(), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Outcomes[OutcomeFetched])
	assert.Equal(t, int32(2), p.movieSearches.Load())
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	p := newProject(t)

	report, err := Run(context.Background(), WithConfig(p.configPath), WithDryRun(), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Len(t, report.Records(), 3)
	assert.NoFileExists(t, p.outputPath)
}

func TestRun_OverridesPaths(t *testing.T) {
	p := newProject(t)
	out := filepath.Join(p.dir, "elsewhere", "records.json")
	cache := filepath.Join(p.dir, "elsewhere", "cache.json")

	report, err := Run(context.Background(),
		WithConfig(p.configPath), WithOutput(out), WithCache(cache), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, out, report.OutputPath)
	assert.FileExists(t, out)
	assert.FileExists(t, cache)
	assert.NoFileExists(t, p.cachePath)
}

func TestRun_NoEntries(t *testing.T) {
	p := newProject(t)

	_, err := Run(context.Background(), WithConfig(p.configPath), WithEntries(filepath.Join(p.dir, "empty")), WithLogger(quietLogger()))

	var noEntries types.ErrNoEntries
	assert.ErrorAs(t, err, &noEntries)
}

func TestRun_InvalidConfig(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "metamatch.yml")
	require.NoError(t, os.WriteFile(path, []byte("fetch:\n  attempts: 0\n"), 0644))

	_, err := Run(context.Background(), WithConfig(path), WithLogger(quietLogger()))

	var invalid types.ErrConfigInvalid
	assert.ErrorAs(t, err, &invalid)
}

func TestMatch(t *testing.T) {
	p := newProject(t)

	result, err := Match(context.Background(), types.Query{Title: "Inception", Year: 2010, Kind: types.MediaKindMovie},
		WithConfig(p.configPath), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, "tmdb-movie", result.Provider)
	assert.Equal(t, 1, result.Candidates)
	require.NotNil(t, result.Best)
	assert.Equal(t, "27205", result.Best.Candidate.ProviderID)
	require.Len(t, result.Ranked, 1)
	assert.NoFileExists(t, p.cachePath, "matching does not touch the cache")
}

func TestMatch_NoConfidentCandidate(t *testing.T) {
	p := newProject(t)

	result, err := Match(context.Background(), types.Query{Title: "Obscure Show", Year: 2019, Kind: types.MediaKindTV},
		WithConfig(p.configPath), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Nil(t, result.Best)
	assert.Empty(t, result.Ranked)
}

func TestCacheHelpers(t *testing.T) {
	p := newProject(t)
	opts := []Option{WithConfig(p.configPath), WithLogger(quietLogger())}

	_, err := Run(context.Background(), opts...)
	require.NoError(t, err)

	path, err := CachePath(opts...)
	require.NoError(t, err)
	assert.Equal(t, p.cachePath, path)

	list, err := CacheList(opts...)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "hades_2020", list[0].Key)
	assert.Equal(t, types.MediaKindGame, list[0].Kind)
	assert.True(t, list[0].Current)
	assert.Equal(t, "inception_2010", list[1].Key)

	rec, err := CacheInfo("inception_2010", opts...)
	require.NoError(t, err)
	assert.Equal(t, int64(27205), rec.TMDBID)
	assert.Equal(t, "YoHD9XEInc0", rec.TrailerID)

	_, err = CacheInfo("missing_1999", opts...)
	assert.Error(t, err)

	keys, err := CacheSearch("incep", opts...)
	require.NoError(t, err)
	assert.Equal(t, []string{"inception_2010"}, keys)
}
