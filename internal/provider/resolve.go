package provider

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/mydehq/metamatch/internal/matcher"
	"github.com/mydehq/metamatch/internal/types"
)

// Resolve searches p for q, selects the best candidate and fetches its detail.
// A failed detail fetch falls back to the search-level payload.
// Diagnostics go to the logger carried by ctx (log.WithContext).
func Resolve(ctx context.Context, p types.Provider, q types.Query) (types.Metadata, error) {
	if !p.Configured() {
		return types.Metadata{}, types.ErrCredentialMissing{Provider: p.Name()}
	}

	candidates, err := p.SearchByTitleYear(ctx, q)
	if err != nil {
		return types.Metadata{}, err
	}

	best, ok := matcher.PickBest(candidates, q, matcher.CandidateAccessors)
	if !ok {
		return types.Metadata{}, types.ErrMatchNotFound{Provider: p.Name(), Title: q.Title}
	}

	payload := best.Metadata
	detail, err := p.FetchDetail(ctx, best)
	if err != nil {
		log.FromContext(ctx).Warn("Detail fetch failed, using search result",
			"provider", p.Name(),
			"title", q.Title,
			"id", best.ProviderID,
			"error", err,
		)
		return payload, nil
	}

	payload.Merge(detail)
	return payload, nil
}
