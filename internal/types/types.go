// Package types defines core domain types used throughout metamatch.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// MediaKind represents the kind of reviewed content
type MediaKind string

const (
	MediaKindMovie MediaKind = "movie"
	MediaKindTV    MediaKind = "tv"
	MediaKindGame  MediaKind = "game"
)

// AllKinds lists every supported media kind in display order
var AllKinds = []MediaKind{MediaKindMovie, MediaKindTV, MediaKindGame}

// ParseMediaKind converts a raw string into a MediaKind
func ParseMediaKind(s string) (MediaKind, error) {
	switch k := MediaKind(strings.ToLower(strings.TrimSpace(s))); k {
	case MediaKindMovie, MediaKindTV, MediaKindGame:
		return k, nil
	}
	return "", fmt.Errorf("unknown media kind %q (want movie, tv or game)", s)
}

// Query is what a provider is asked to resolve for one local entry.
// Year 0 means the release year is unknown.
type Query struct {
	Title string
	Year  int
	Kind  MediaKind
}

// Candidate is a single provider search result, mapped into the shared shape
type Candidate struct {
	ProviderID string
	Title      string
	Date       string
	Slug       string
	Popularity float64
	Metadata   Metadata
}

// Metadata is the provider payload attached to an entry.
// JSON names match the persisted cache format.
type Metadata struct {
	TMDBID              int64    `json:"tmdb_id,omitempty"`
	RAWGID              int64    `json:"rawg_id,omitempty"`
	PosterPath          string   `json:"poster_path,omitempty"`
	CardImage           string   `json:"card_image,omitempty"`
	OfficialDescription string   `json:"official_description,omitempty"`
	TMDBRating          *float64 `json:"tmdb_rating,omitempty"`
	TMDBURL             string   `json:"tmdb_url,omitempty"`
	MetacriticScore     int      `json:"metacritic_score,omitempty"`
	RAWGURL             string   `json:"rawg_url,omitempty"`
	TrailerURL          string   `json:"trailer_url,omitempty"`
	TrailerID           string   `json:"trailer_id,omitempty"`
}

// Rating returns a pointer to v, for Metadata.TMDBRating
func Rating(v float64) *float64 {
	return &v
}

// IsEmpty reports whether no payload field is set
func (m Metadata) IsEmpty() bool {
	return m == Metadata{}
}

// Merge copies every non-empty field of other onto m
func (m *Metadata) Merge(other Metadata) {
	if other.TMDBID != 0 {
		m.TMDBID = other.TMDBID
	}
	if other.RAWGID != 0 {
		m.RAWGID = other.RAWGID
	}
	if other.PosterPath != "" {
		m.PosterPath = other.PosterPath
	}
	if other.CardImage != "" {
		m.CardImage = other.CardImage
	}
	if other.OfficialDescription != "" {
		m.OfficialDescription = other.OfficialDescription
	}
	if other.TMDBRating != nil {
		rating := *other.TMDBRating
		m.TMDBRating = &rating
	}
	if other.TMDBURL != "" {
		m.TMDBURL = other.TMDBURL
	}
	if other.MetacriticScore != 0 {
		m.MetacriticScore = other.MetacriticScore
	}
	if other.RAWGURL != "" {
		m.RAWGURL = other.RAWGURL
	}
	if other.TrailerURL != "" {
		m.TrailerURL = other.TrailerURL
	}
	if other.TrailerID != "" {
		m.TrailerID = other.TrailerID
	}
}

// Fields flattens the payload into record fields, omitting empty values.
// A rating that was reported as 0 is kept.
func (m Metadata) Fields() Record {
	fields := make(Record)
	data, err := json.Marshal(m)
	if err != nil {
		return fields
	}
	_ = json.Unmarshal(data, &fields)
	return fields
}

// CacheRecord is a persisted payload plus the provenance of the query that produced it
type CacheRecord struct {
	Metadata
	SchemaVersion  int       `json:"cache_version"`
	QueryTitleNorm string    `json:"query_title_norm"`
	QueryYear      int       `json:"query_year"`
	QueryKind      MediaKind `json:"query_type"`

	// Extra holds persisted fields metamatch does not know, so a rewrite keeps them
	Extra map[string]json.RawMessage `json:"-"`
}

type cacheRecordJSON CacheRecord

var cacheRecordKeys = jsonKeys(reflect.TypeOf(CacheRecord{}))

func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			for k := range jsonKeys(f.Type) {
				keys[k] = true
			}
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		keys[name] = true
	}
	return keys
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra
func (r *CacheRecord) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var known cacheRecordJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range all {
		if cacheRecordKeys[k] {
			delete(all, k)
		}
	}

	*r = CacheRecord(known)
	r.Extra = nil
	if len(all) > 0 {
		r.Extra = all
	}
	return nil
}

// MarshalJSON writes the known fields followed by any Extra ones
func (r CacheRecord) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(cacheRecordJSON(r))
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, taken := out[k]; !taken && !cacheRecordKeys[k] {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// Record is a merged output record handed to the publishing side
type Record = map[string]any

// Local-priority field names. Authored values for these always win.
const (
	FieldCardImage           = "card_image"
	FieldPosterPath          = "poster_path"
	FieldOfficialDescription = "official_description"
	FieldTrailerURL          = "trailer_url"
)

// LocalPriorityFields are re-applied from the entry after merging fetched data
var LocalPriorityFields = []string{
	FieldCardImage,
	FieldPosterPath,
	FieldOfficialDescription,
	FieldTrailerURL,
}

// Entry is one locally authored review
type Entry struct {
	Identifier  string
	Title       string
	Kind        MediaKind
	ReleaseYear int
	ReviewDate  string
	Rating      float64
	Source      string

	// Fields holds every authored field verbatim
	Fields Record
}

// Query derives the provider query for the entry
func (e Entry) Query() Query {
	return Query{Title: e.Title, Year: e.ReleaseYear, Kind: e.Kind}
}
