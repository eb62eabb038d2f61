// Package usecase contains the business logic of the application.
package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/codefl0w/gh-boards/internal/domain"
	"github.com/codefl0w/gh-boards/internal/gateway"
)

// Aggregator is the use case for collecting per-repository metrics.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *zap.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Collect resolves the release download total for each listed repository.
// Repositories are fetched one at a time, in listing order, and the output
// preserves that order. A repository whose downloads cannot be fetched is
// recorded with zero downloads rather than failing the whole collection.
func (a *Aggregator) Collect(ctx context.Context, owner string, repos []domain.RepoSummary) []domain.RepoRecord {
	records := make([]domain.RepoRecord, 0, len(repos))
	for _, repo := range repos {
		if repo.Name == "" {
			continue
		}
		downloads, err := a.fetcher.FetchReleaseDownloadTotal(ctx, owner, repo.Name)
		if err != nil {
			a.logger.Warn("failed to fetch release downloads",
				zap.String("owner", owner),
				zap.String("repo", repo.Name),
				zap.Error(err),
			)
			downloads = 0
		}
		records = append(records, domain.RepoRecord{
			Name:      repo.Name,
			Downloads: downloads,
			Stars:     repo.Stars,
		})
	}
	return records
}
