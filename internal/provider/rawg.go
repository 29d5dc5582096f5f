package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mydehq/metamatch/internal/fetcher"
	"github.com/mydehq/metamatch/internal/matcher"
	"github.com/mydehq/metamatch/internal/types"
)

const (
	rawgAPIURL  = "https://api.rawg.io/api"
	rawgSiteURL = "https://rawg.io/games"
)

// RAWGProvider resolves games against the RAWG video game database
type RAWGProvider struct {
	apiKey  string
	baseURL string
	fetcher *fetcher.Fetcher
	phrases []string
}

// NewRAWG creates a RAWG provider using the default supplemental phrase list
func NewRAWG(apiKey string, f *fetcher.Fetcher, opts ...Option) *RAWGProvider {
	o := buildOptions(rawgAPIURL, opts)
	return &RAWGProvider{
		apiKey:  apiKey,
		baseURL: o.baseURL,
		fetcher: orDefault(f),
		phrases: SupplementalPhrases,
	}
}

// Name returns the provider identifier
func (p *RAWGProvider) Name() string {
	return "rawg"
}

// Configured reports whether an API key is set
func (p *RAWGProvider) Configured() bool {
	return p.apiKey != ""
}

type rawgSearchResponse struct {
	Results []rawgGame `json:"results"`
}

type rawgGame struct {
	ID              int64   `json:"id"`
	Slug            string  `json:"slug"`
	Name            string  `json:"name"`
	Released        string  `json:"released"`
	BackgroundImage string  `json:"background_image"`
	Metacritic      int     `json:"metacritic"`
	RatingsCount    float64 `json:"ratings_count"`
	ReviewsCount    float64 `json:"reviews_count"`
}

type rawgDetail struct {
	rawgGame
	Description    string `json:"description"`
	DescriptionRaw string `json:"description_raw"`
}

// SearchByTitleYear searches RAWG and drops supplemental entries such as DLC and demos
func (p *RAWGProvider) SearchByTitleYear(ctx context.Context, q types.Query) ([]types.Candidate, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("search", matcher.CleanSearchTitle(q.Title))
	params.Set("search_precise", "true")
	params.Set("page_size", "20")
	reqURL := fmt.Sprintf("%s/games?%s", p.baseURL, params.Encode())

	var resp rawgSearchResponse
	if err := p.fetcher.FetchJSON(ctx, fetcher.Get(reqURL), fetcher.Options{Label: "RAWG game search"}, &resp); err != nil {
		return nil, err
	}

	candidates := make([]types.Candidate, 0, len(resp.Results))
	for _, g := range resp.Results {
		if IsSupplemental(g.Name, g.Slug, p.phrases) {
			continue
		}
		candidates = append(candidates, toRAWGCandidate(g))
	}
	return candidates, nil
}

// FetchDetail loads the game page for its description
func (p *RAWGProvider) FetchDetail(ctx context.Context, c types.Candidate) (types.Metadata, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)
	reqURL := fmt.Sprintf("%s/games/%s?%s", p.baseURL, url.PathEscape(c.ProviderID), params.Encode())

	var detail rawgDetail
	if err := p.fetcher.FetchJSON(ctx, fetcher.Get(reqURL), fetcher.Options{Label: "RAWG game detail"}, &detail); err != nil {
		return types.Metadata{}, err
	}

	meta := toRAWGCandidate(detail.rawgGame).Metadata
	meta.OfficialDescription = htmlToText(detail.Description)
	if meta.OfficialDescription == "" {
		meta.OfficialDescription = strings.TrimSpace(detail.DescriptionRaw)
	}
	return meta, nil
}

func toRAWGCandidate(g rawgGame) types.Candidate {
	popularity := g.RatingsCount
	if popularity == 0 {
		popularity = g.ReviewsCount
	}

	meta := types.Metadata{
		RAWGID:          g.ID,
		PosterPath:      g.BackgroundImage,
		CardImage:       g.BackgroundImage,
		MetacriticScore: g.Metacritic,
	}
	if g.Slug != "" {
		meta.RAWGURL = rawgSiteURL + "/" + g.Slug
	}

	return types.Candidate{
		ProviderID: strconv.FormatInt(g.ID, 10),
		Title:      g.Name,
		Date:       g.Released,
		Slug:       g.Slug,
		Popularity: popularity,
		Metadata:   meta,
	}
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true,
}

// htmlToText flattens an HTML description into plain text paragraphs
func htmlToText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.Br:
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			b.WriteString("\n\n")
		}
	}
	walk(doc)

	var lines []string
	gap := false
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			gap = len(lines) > 0
			continue
		}
		if gap {
			lines = append(lines, "")
			gap = false
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
