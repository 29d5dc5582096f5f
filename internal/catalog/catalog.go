// Package catalog loads locally authored review entries from disk.
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mydehq/metamatch/internal/types"
)

// RequiredFields must be present and non-null on every entry
var RequiredFields = []string{"slug", "title", "type", "rating", "releaseYear"}

// FieldVerdict is the record field the verdict is written to
const FieldVerdict = "verdict"

// LoadDir reads every *.json file in dir in name order. Files that fail to
// parse or lack required fields are reported and skipped. A missing
// directory yields no entries and no errors.
func LoadDir(dir string) ([]types.Entry, []error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{fmt.Errorf("failed to read entries directory %s: %w", dir, err)}
	}

	var names []string
	for _, de := range dirEntries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".json") {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	var entries []types.Entry
	var skipped []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			skipped = append(skipped, &types.EntryParseError{File: name, Reason: err.Error()})
			continue
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			skipped = append(skipped, &types.EntryParseError{File: name, Reason: err.Error()})
			continue
		}

		entry, err := ParseEntry(raw, path)
		if err != nil {
			skipped = append(skipped, &types.EntryParseError{File: name, Reason: err.Error()})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}

// LoadLegacy reads a single JSON array of entries
func LoadLegacy(path string) ([]types.Entry, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read legacy entries %s: %w", path, err)}
	}

	var raws []map[string]any
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, []error{&types.EntryParseError{File: path, Reason: err.Error()}}
	}

	var entries []types.Entry
	var skipped []error
	for i, raw := range raws {
		entry, err := ParseEntry(raw, path)
		if err != nil {
			skipped = append(skipped, &types.EntryParseError{File: fmt.Sprintf("%s[%d]", path, i), Reason: err.Error()})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}

// Load reads entries from dir, falling back to the legacy file when dir
// holds no valid entry. Entries get a verdict and are sorted newest review
// first. Having no entries at all is the only error.
func Load(dir, legacy string) ([]types.Entry, []error, error) {
	var entries []types.Entry
	var skipped []error

	if dir != "" {
		entries, skipped = LoadDir(dir)
	}
	if len(entries) == 0 && legacy != "" {
		var legacySkipped []error
		entries, legacySkipped = LoadLegacy(legacy)
		skipped = append(skipped, legacySkipped...)
	}

	if len(entries) == 0 {
		source := dir
		if source == "" {
			source = legacy
		}
		return nil, skipped, types.ErrNoEntries{Dir: source}
	}

	for i := range entries {
		entries[i].Fields[FieldVerdict] = Verdict(entries[i].Rating, entries[i].Kind)
	}
	SortByReviewDate(entries)
	return entries, skipped, nil
}

// ParseEntry validates an authored record and extracts the fields the engine uses
func ParseEntry(raw map[string]any, source string) (types.Entry, error) {
	if raw == nil {
		return types.Entry{}, fmt.Errorf("entry is not an object")
	}
	for _, key := range RequiredFields {
		if v, ok := raw[key]; !ok || v == nil {
			return types.Entry{}, fmt.Errorf("missing required field %q", key)
		}
	}

	slug, ok := raw["slug"].(string)
	if !ok || strings.TrimSpace(slug) == "" {
		return types.Entry{}, fmt.Errorf("slug must be a non-empty string")
	}
	title, ok := raw["title"].(string)
	if !ok {
		return types.Entry{}, fmt.Errorf("title must be a string")
	}
	kind, ok := raw["type"].(string)
	if !ok {
		return types.Entry{}, fmt.Errorf("type must be a string")
	}

	year, ok := toNumber(raw["releaseYear"])
	if !ok || math.IsInf(year, 0) || year != math.Trunc(year) {
		return types.Entry{}, fmt.Errorf("releaseYear must be a whole number, got %v", raw["releaseYear"])
	}

	rating, ok := toNumber(raw["rating"])
	if !ok {
		rating = math.NaN()
	}

	reviewDate, _ := raw["reviewDate"].(string)

	return types.Entry{
		Identifier:  slug,
		Title:       title,
		Kind:        types.MediaKind(strings.ToLower(strings.TrimSpace(kind))),
		ReleaseYear: int(year),
		ReviewDate:  reviewDate,
		Rating:      rating,
		Source:      source,
		Fields:      raw,
	}, nil
}

// Verdict maps a 0-10 rating to its label. Non-numeric ratings are "Average".
func Verdict(rating float64, kind types.MediaKind) string {
	switch {
	case math.IsNaN(rating) || math.IsInf(rating, 0):
		return "Average"
	case rating > 8.4 && rating <= 10:
		if kind == types.MediaKindGame {
			return "Must Play"
		}
		return "Must Watch"
	case rating > 6.9:
		return "Worth Your Time"
	case rating > 5.5:
		return "Average"
	}
	return "Skip"
}

// SortByReviewDate orders entries newest first. Entries without a readable
// date keep their relative order after all dated ones.
func SortByReviewDate(entries []types.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, okI := parseDate(entries[i].ReviewDate)
		tj, okJ := parseDate(entries[j].ReviewDate)
		if okI != okJ {
			return okI
		}
		return okI && ti.After(tj)
	})
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toNumber accepts JSON numbers and numeric strings
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
