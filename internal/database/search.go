package database

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mydehq/metamatch/internal/types"
)

// Search returns the keys of store that fuzzily match query, closest first.
// An empty query returns every key.
func Search(store types.CacheStore, query string) []string {
	keys := store.Keys()
	query = strings.TrimSpace(query)
	if query == "" {
		return keys
	}

	matches := fuzzy.RankFindFold(query, keys)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Target < matches[j].Target
	})

	results := make([]string, len(matches))
	for i, m := range matches {
		results[i] = m.Target
	}
	return results
}
