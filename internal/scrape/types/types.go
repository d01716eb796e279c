package types

import (
	"context"

	"jobboard-engine/internal/domain"
)

type ScrapeResult struct {
	Source   domain.Source
	Postings []domain.Posting
}

// Fetcher is one listing site: fetch its pages and extract canonical postings.
// New sources are added as new implementations.
type Fetcher interface {
	Name() domain.Source
	Fetch(ctx context.Context) (ScrapeResult, error)
}
