package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mydehq/metamatch/internal/fetcher"
	"github.com/mydehq/metamatch/internal/matcher"
	"github.com/mydehq/metamatch/internal/types"
)

const (
	tmdbAPIURL    = "https://api.themoviedb.org/3"
	tmdbImageURL  = "https://image.tmdb.org/t/p"
	tmdbSiteURL   = "https://www.themoviedb.org"
	tmdbPosterDim = "w342"
	tmdbCardDim   = "w780"
)

// TMDBProvider resolves movies or TV shows against The Movie Database
type TMDBProvider struct {
	kind    types.MediaKind
	apiKey  string
	baseURL string
	fetcher *fetcher.Fetcher
}

// NewTMDBMovie creates a TMDB provider for movies
func NewTMDBMovie(apiKey string, f *fetcher.Fetcher, opts ...Option) *TMDBProvider {
	return newTMDB(types.MediaKindMovie, apiKey, f, opts)
}

// NewTMDBTV creates a TMDB provider for TV shows
func NewTMDBTV(apiKey string, f *fetcher.Fetcher, opts ...Option) *TMDBProvider {
	return newTMDB(types.MediaKindTV, apiKey, f, opts)
}

func newTMDB(kind types.MediaKind, apiKey string, f *fetcher.Fetcher, opts []Option) *TMDBProvider {
	o := buildOptions(tmdbAPIURL, opts)
	return &TMDBProvider{
		kind:    kind,
		apiKey:  apiKey,
		baseURL: o.baseURL,
		fetcher: orDefault(f),
	}
}

// Name returns the provider identifier
func (p *TMDBProvider) Name() string {
	return "tmdb-" + string(p.kind)
}

// Configured reports whether an API key is set
func (p *TMDBProvider) Configured() bool {
	return p.apiKey != ""
}

type tmdbSearchResponse struct {
	Results []tmdbResult `json:"results"`
}

// tmdbResult covers both movie and TV search results; movies fill Title and
// ReleaseDate, shows fill Name and FirstAirDate.
type tmdbResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    float64 `json:"vote_count"`
}

// SearchByTitleYear queries the TMDB search endpoint for the provider's kind
func (p *TMDBProvider) SearchByTitleYear(ctx context.Context, q types.Query) ([]types.Candidate, error) {
	params := url.Values{}
	params.Set("api_key", p.apiKey)
	params.Set("query", matcher.CleanSearchTitle(q.Title))
	if p.kind == types.MediaKindMovie && q.Year > 0 {
		params.Set("year", strconv.Itoa(q.Year))
	}
	params.Set("include_adult", "false")
	params.Set("page", "1")

	endpoint := "movie"
	if p.kind == types.MediaKindTV {
		endpoint = "tv"
	}
	reqURL := fmt.Sprintf("%s/search/%s?%s", p.baseURL, endpoint, params.Encode())

	var resp tmdbSearchResponse
	err := p.fetcher.FetchJSON(ctx, fetcher.Get(reqURL), fetcher.Options{Label: fmt.Sprintf("TMDB %s search", p.kind)}, &resp)
	if err != nil {
		return nil, err
	}

	candidates := make([]types.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		candidates = append(candidates, p.toCandidate(r))
	}
	return candidates, nil
}

// FetchDetail returns the search-level payload; TMDB search results already carry it
func (p *TMDBProvider) FetchDetail(_ context.Context, c types.Candidate) (types.Metadata, error) {
	return c.Metadata, nil
}

func (p *TMDBProvider) toCandidate(r tmdbResult) types.Candidate {
	title, date := r.Title, r.ReleaseDate
	if p.kind == types.MediaKindTV {
		title, date = r.Name, r.FirstAirDate
	}

	meta := types.Metadata{
		TMDBID:              r.ID,
		PosterPath:          tmdbImage(tmdbPosterDim, r.PosterPath),
		CardImage:           tmdbImage(tmdbCardDim, r.BackdropPath),
		OfficialDescription: r.Overview,
		TMDBRating:          types.Rating(r.VoteAverage),
		TMDBURL:             fmt.Sprintf("%s/%s/%d", tmdbSiteURL, p.kind, r.ID),
	}
	if meta.CardImage == "" {
		meta.CardImage = meta.PosterPath
	}

	return types.Candidate{
		ProviderID: strconv.FormatInt(r.ID, 10),
		Title:      title,
		Date:       date,
		Popularity: r.VoteCount,
		Metadata:   meta,
	}
}

func tmdbImage(size, path string) string {
	if path == "" {
		return ""
	}
	return tmdbImageURL + "/" + size + path
}
