package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/codefl0w/gh-boards/internal/domain"
	"github.com/codefl0w/gh-boards/internal/gateway"
	"github.com/codefl0w/gh-boards/internal/manifest"
)

// ProcessedBy identifies the batch generator in manifest provenance stamps.
const ProcessedBy = "gh-boards/generate"

// Processor drives the whole pipeline for a manifest: select repositories,
// collect metrics, render artifacts, persist the updated manifest.
type Processor struct {
	fetcher    gateway.Fetcher
	aggregator *Aggregator
	resolver   *Resolver
	logger     *zap.Logger
	now        func() time.Time
}

// NewProcessor creates a Processor writing artifacts under outDir.
func NewProcessor(fetcher gateway.Fetcher, logger *zap.Logger, outDir string) *Processor {
	return &Processor{
		fetcher:    fetcher,
		aggregator: NewAggregator(fetcher, logger),
		resolver:   NewResolver(fetcher, logger, outDir),
		logger:     logger,
		now:        time.Now,
	}
}

// RunBatch processes every manifest under usersDir. A failing manifest is
// logged and does not stop the batch; only a missing directory is fatal.
func (p *Processor) RunBatch(ctx context.Context, usersDir string) error {
	if _, err := os.Stat(usersDir); err != nil {
		return fmt.Errorf("users directory not found: %w", err)
	}
	paths, err := manifest.List(usersDir)
	if err != nil {
		return fmt.Errorf("failed to list manifests in %s: %w", usersDir, err)
	}
	if len(paths) == 0 {
		p.logger.Warn("no manifests found", zap.String("dir", usersDir))
		return nil
	}

	for _, path := range paths {
		if err := p.ProcessManifest(ctx, path); err != nil {
			p.logger.Error("failed to process manifest",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}
	return nil
}

// ProcessManifest runs the pipeline for a single manifest file. When the
// repository listing is unchanged since the last run, rendering is skipped
// entirely and only the check timestamp is persisted. Provenance stamps are
// written only when at least one artifact was rendered, and the manifest is
// saved even when rendering failed partway so the refreshed revision token
// is not lost.
func (p *Processor) ProcessManifest(ctx context.Context, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load manifest %s: %w", path, err)
	}

	repos, changed, err := p.selectRepositories(ctx, m)
	if err != nil {
		return err
	}

	m.Cache.LastChecked = p.now().UTC().Format(manifest.TimeLayout)

	if !changed {
		p.logger.Info("repository listing unchanged, skipping render", zap.String("user", m.User))
		if err := manifest.Save(path, m); err != nil {
			return fmt.Errorf("failed to save manifest %s: %w", path, err)
		}
		return nil
	}

	p.logger.Info("gathering repository data",
		zap.String("user", m.User),
		zap.Int("repos", len(repos)),
		zap.String("method", m.Selection.Method),
		zap.Int("limit", m.Selection.Limit),
	)
	records := p.aggregator.Collect(ctx, m.User, repos)

	rendered, renderErr := p.resolver.RenderArtifacts(ctx, m, records)
	if rendered > 0 {
		stamp := p.now().UTC().Format(manifest.TimeLayout)
		m.LastUpdate = stamp
		m.Meta.LastProcessedBy = ProcessedBy
		m.Meta.LastProcessedAt = stamp
	}
	if err := manifest.Save(path, m); err != nil {
		saveErr := fmt.Errorf("failed to save manifest %s: %w", path, err)
		if renderErr != nil {
			return errors.Join(renderErr, saveErr)
		}
		return saveErr
	}
	return renderErr
}

// selectRepositories resolves which repositories the manifest covers.
// Explicit targets always win and always count as changed; only the
// top_stars listing participates in the conditional-fetch cache.
func (p *Processor) selectRepositories(ctx context.Context, m *manifest.Manifest) ([]domain.RepoSummary, bool, error) {
	if len(m.Targets.Repos) > 0 {
		repos := make([]domain.RepoSummary, 0, len(m.Targets.Repos))
		for _, name := range m.Targets.Repos {
			repo, err := p.fetcher.FetchRepository(ctx, m.User, name)
			if err != nil {
				return nil, false, err
			}
			if repo == nil {
				p.logger.Warn("target repository not found",
					zap.String("user", m.User),
					zap.String("repo", name),
				)
				continue
			}
			repos = append(repos, domain.RepoSummary{Name: repo.Name, Stars: repo.Stars})
		}
		return repos, true, nil
	}

	switch m.Selection.Method {
	case manifest.MethodTopStars:
		return p.selectTopStarred(ctx, m)
	case manifest.MethodAll:
		repos, err := p.fetcher.FetchAllRepositories(ctx, m.User)
		return repos, true, err
	default:
		p.logger.Warn("unknown selection method, falling back to full listing",
			zap.String("user", m.User),
			zap.String("method", m.Selection.Method),
		)
		repos, err := p.fetcher.FetchAllRepositories(ctx, m.User)
		return repos, true, err
	}
}

func (p *Processor) selectTopStarred(ctx context.Context, m *manifest.Manifest) ([]domain.RepoSummary, bool, error) {
	repos, token, changed, err := p.fetcher.FetchTopStarred(ctx, m.User, m.Selection.Limit, m.Cache.ReposRevision)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return nil, false, nil
	}
	if token != "" {
		m.Cache.ReposRevision = token
	}
	if len(repos) == 0 {
		p.logger.Info("search returned no repositories, falling back to full listing", zap.String("user", m.User))
		all, err := p.fetcher.FetchAllRepositories(ctx, m.User)
		return all, true, err
	}
	return repos, true, nil
}
