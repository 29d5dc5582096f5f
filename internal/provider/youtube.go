package provider

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/mydehq/metamatch/internal/fetcher"
	"github.com/mydehq/metamatch/internal/matcher"
	"github.com/mydehq/metamatch/internal/types"
)

const (
	youtubeAPIURL   = "https://www.googleapis.com/youtube/v3"
	youtubeWatchURL = "https://www.youtube.com/watch?v="
	youtubeResults  = 10

	// minTrailerScore must be exceeded for a video to be used
	minTrailerScore = 20
)

// Trailer scoring weights
const (
	trailerOverlapWeight = 40
	trailerYearBonus     = 15
	trailerKeywordBonus  = 12
	trailerGameBonus     = 8
	trailerNoisePenalty  = 25
)

var (
	trailerKeywords     = []string{"official", "trailer", "teaser"}
	trailerGameKeywords = []string{"gameplay", "launch"}
	trailerNoise        = []string{"reaction", "recap", "explained", "review", "fan made", "breakdown", "parody"}
)

// YouTubeTrailers finds an official trailer through the YouTube Data API
type YouTubeTrailers struct {
	apiKey  string
	baseURL string
	fetcher *fetcher.Fetcher
}

// NewYouTubeTrailers creates a YouTube trailer source
func NewYouTubeTrailers(apiKey string, f *fetcher.Fetcher, opts ...Option) *YouTubeTrailers {
	o := buildOptions(youtubeAPIURL, opts)
	return &YouTubeTrailers{
		apiKey:  apiKey,
		baseURL: o.baseURL,
		fetcher: orDefault(f),
	}
}

// Name returns the source identifier
func (y *YouTubeTrailers) Name() string {
	return "youtube"
}

// Configured reports whether an API key is set
func (y *YouTubeTrailers) Configured() bool {
	return y.apiKey != ""
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

// FindTrailer searches for the title and returns the best scoring video
func (y *YouTubeTrailers) FindTrailer(ctx context.Context, q types.Query) (types.Metadata, error) {
	if !y.Configured() {
		return types.Metadata{}, types.ErrCredentialMissing{Provider: y.Name()}
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(youtubeResults))
	params.Set("q", TrailerQuery(q))
	params.Set("key", y.apiKey)
	reqURL := fmt.Sprintf("%s/search?%s", y.baseURL, params.Encode())

	var resp youtubeSearchResponse
	if err := y.fetcher.FetchJSON(ctx, fetcher.Get(reqURL), fetcher.Options{Label: "YouTube trailer search"}, &resp); err != nil {
		return types.Metadata{}, err
	}

	bestID := ""
	bestScore := minTrailerScore
	for rank, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		if score := ScoreTrailer(q, item.Snippet.Title, rank); score > bestScore {
			bestID, bestScore = item.ID.VideoID, score
		}
	}

	if bestID == "" {
		return types.Metadata{}, types.ErrMatchNotFound{Provider: y.Name(), Title: q.Title}
	}
	return types.Metadata{
		TrailerURL: youtubeWatchURL + bestID,
		TrailerID:  bestID,
	}, nil
}

// TrailerQuery builds the search phrase from title, year and a kind keyword
func TrailerQuery(q types.Query) string {
	parts := []string{matcher.CleanSearchTitle(q.Title)}
	if q.Year > 0 {
		parts = append(parts, strconv.Itoa(q.Year))
	}
	if q.Kind == types.MediaKindGame {
		parts = append(parts, "official launch trailer")
	} else {
		parts = append(parts, "official trailer")
	}
	return strings.Join(parts, " ")
}

// ScoreTrailer rates a video title for q. rank is the zero-based position in
// the search response and only breaks near ties.
func ScoreTrailer(q types.Query, videoTitle string, rank int) int {
	text := " " + matcher.NormalizeTitle(videoTitle) + " "

	score := int(math.Round(matcher.TokenOverlap(q.Title, videoTitle) * trailerOverlapWeight))
	if q.Year > 0 && strings.Contains(text, " "+strconv.Itoa(q.Year)+" ") {
		score += trailerYearBonus
	}
	score += countPhrases(text, trailerKeywords) * trailerKeywordBonus
	if q.Kind == types.MediaKindGame {
		score += countPhrases(text, trailerGameKeywords) * trailerGameBonus
	}
	score -= countPhrases(text, trailerNoise) * trailerNoisePenalty
	score += max(0, youtubeResults-rank)
	return score
}

// countPhrases counts whole-word phrases present in the space-padded text
func countPhrases(text string, phrases []string) int {
	n := 0
	for _, phrase := range phrases {
		if strings.Contains(text, " "+phrase+" ") {
			n++
		}
	}
	return n
}
