package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/codefl0w/gh-boards/internal/domain"
	"github.com/codefl0w/gh-boards/internal/gateway"
	"github.com/codefl0w/gh-boards/internal/manifest"
	"github.com/codefl0w/gh-boards/internal/render"
)

// CanonicalURLBase is the public location artifacts are served from once
// the output directory is published.
const CanonicalURLBase = "https://codefl0w.github.io/web-tools/gh-boards/out"

// Status colors for value-driven badges. Workflow badges force one of
// these regardless of any user-configured color.
const (
	colorGreen   = "#2ea44f"
	colorAmber   = "#d29922"
	colorRed     = "#d73a49"
	colorNeutral = "#6e7681"
)

// skipError marks a single artifact as unrenderable. The run continues
// with the remaining artifacts.
type skipError struct {
	reason string
}

func (e skipError) Error() string { return e.reason }

// BoardOptions are the per-artifact options accepted by board artifacts.
// Pointer fields distinguish "absent" from an explicit zero value.
type BoardOptions struct {
	Theme     string `json:"theme"`
	ShowStars *bool  `json:"show_stars"`
	MaxRepos  *int   `json:"max_repos"`
}

// BadgeOptions are the per-artifact options accepted by badge artifacts.
type BadgeOptions struct {
	BadgeType  string `json:"badge_type"`
	Repo       string `json:"repo"`
	Color      string `json:"color"`
	LabelColor string `json:"label_color"`
	TextStyle  string `json:"text_style"`
	Label      string `json:"label"`
	Workflow   string `json:"workflow"`
}

// BadgeOverrides carries presentation decisions made while resolving a
// badge value. A forced color beats the user-configured one; the label
// is only a fallback for when the user configured none.
type BadgeOverrides struct {
	Color string
	Label string
}

// StatusLabel maps a workflow run onto a human label and its status color.
// A nil run means the workflow has never run.
func StatusLabel(run *domain.WorkflowRun) (string, string) {
	if run == nil {
		return "no runs", colorNeutral
	}
	if run.Status != "completed" {
		return "in progress", colorAmber
	}
	switch run.Conclusion {
	case "success":
		return "passing", colorGreen
	case "failure":
		return "failed", colorRed
	case "cancelled":
		return "cancelled", colorNeutral
	case "skipped":
		return "skipped", colorNeutral
	case "timed_out":
		return "timed out", colorRed
	case "":
		return "unknown", colorNeutral
	default:
		return run.Conclusion, colorNeutral
	}
}

// ResolveBadgeValue turns badge options into a renderable value. Already
// collected records are consulted before going back to the gateway, so
// badges over the selected repositories cost no extra API calls.
func ResolveBadgeValue(ctx context.Context, fetcher gateway.Fetcher, logger *zap.Logger, user string, records []domain.RepoRecord, opts BadgeOptions) (domain.BadgeValue, BadgeOverrides, error) {
	var ov BadgeOverrides

	if opts.BadgeType != "followers" && opts.Repo == "" {
		return domain.BadgeValue{}, ov, skipError{fmt.Sprintf("badge type %q requires a repo option", opts.BadgeType)}
	}

	switch opts.BadgeType {
	case "stars":
		if rec := findRecord(records, opts.Repo); rec != nil {
			return domain.CountValue(rec.Stars), ov, nil
		}
		repo, err := fetcher.FetchRepository(ctx, user, opts.Repo)
		if err != nil {
			return domain.BadgeValue{}, ov, err
		}
		if repo == nil {
			return domain.CountValue(0), ov, nil
		}
		return domain.CountValue(repo.Stars), ov, nil

	case "downloads":
		if rec := findRecord(records, opts.Repo); rec != nil {
			return domain.CountValue(rec.Downloads), ov, nil
		}
		downloads, err := fetcher.FetchReleaseDownloadTotal(ctx, user, opts.Repo)
		if err != nil {
			logger.Warn("failed to fetch release downloads",
				zap.String("owner", user),
				zap.String("repo", opts.Repo),
				zap.Error(err),
			)
			downloads = 0
		}
		return domain.CountValue(downloads), ov, nil

	case "followers":
		profile, _, _, err := fetcher.FetchUserProfile(ctx, user, "")
		if err != nil {
			return domain.BadgeValue{}, ov, err
		}
		if profile == nil {
			return domain.CountValue(0), ov, nil
		}
		return domain.CountValue(profile.Followers), ov, nil

	case "watchers":
		repo, err := fetcher.FetchRepository(ctx, user, opts.Repo)
		if err != nil {
			return domain.BadgeValue{}, ov, err
		}
		if repo == nil {
			return domain.CountValue(0), ov, nil
		}
		return domain.CountValue(repo.Subscribers), ov, nil

	case "license":
		repo, err := fetcher.FetchRepository(ctx, user, opts.Repo)
		if err != nil {
			return domain.BadgeValue{}, ov, err
		}
		if repo == nil || repo.License == "" {
			ov.Color = colorRed
			return domain.LabelValue("no license"), ov, nil
		}
		return domain.LabelValue(repo.License), ov, nil

	case "workflow_status":
		run, _, _, err := fetcher.FetchLatestWorkflowRun(ctx, user, opts.Repo, opts.Workflow, "")
		if err != nil {
			return domain.BadgeValue{}, ov, err
		}
		label, color := StatusLabel(run)
		ov.Color = color
		if run != nil && run.Name != "" {
			ov.Label = run.Name
		}
		return domain.LabelValue(label), ov, nil

	default:
		return domain.BadgeValue{}, ov, skipError{fmt.Sprintf("unknown badge type %q", opts.BadgeType)}
	}
}

func findRecord(records []domain.RepoRecord, name string) *domain.RepoRecord {
	for i := range records {
		if records[i].Name == name {
			return &records[i]
		}
	}
	return nil
}

// TopByDownloads returns the maxRepos highest-downloaded records. The sort
// is stable so repositories with equal downloads keep their listing order.
// The input slice is left untouched.
func TopByDownloads(records []domain.RepoRecord, maxRepos int) []domain.RepoRecord {
	rows := append([]domain.RepoRecord(nil), records...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Downloads > rows[j].Downloads
	})
	if maxRepos < 0 {
		maxRepos = 0
	}
	if len(rows) > maxRepos {
		rows = rows[:maxRepos]
	}
	return rows
}

// Resolver renders a manifest's artifacts to SVG files and stamps each
// artifact with where and when it was rendered.
type Resolver struct {
	fetcher gateway.Fetcher
	logger  *zap.Logger
	outDir  string
	urlBase string
	now     func() time.Time
}

// NewResolver creates a new Resolver writing under outDir.
func NewResolver(fetcher gateway.Fetcher, logger *zap.Logger, outDir string) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
		outDir:  outDir,
		urlBase: CanonicalURLBase,
		now:     time.Now,
	}
}

// RenderArtifacts renders every active artifact in the manifest and returns
// how many were written. Skippable problems (paused status, unknown types,
// malformed options) are logged and do not stop the run; I/O and transport
// failures do, after reporting what was already rendered.
func (r *Resolver) RenderArtifacts(ctx context.Context, m *manifest.Manifest, records []domain.RepoRecord) (int, error) {
	rendered := 0
	for i := range m.Artifacts {
		art := &m.Artifacts[i]
		if art.Status == manifest.StatusPaused {
			r.logger.Info("skipping paused artifact",
				zap.String("user", m.User),
				zap.String("artifact", art.ID),
			)
			continue
		}

		var (
			svg []byte
			err error
		)
		switch art.Type {
		case manifest.TypeBoard:
			svg, err = r.renderBoard(m, art, records)
		case manifest.TypeBadge:
			svg, err = r.renderBadge(ctx, m, art, records)
		default:
			r.logger.Warn("skipping artifact of unknown type",
				zap.String("user", m.User),
				zap.String("artifact", art.ID),
				zap.String("type", art.Type),
			)
			continue
		}
		if err != nil {
			var skip skipError
			if errors.As(err, &skip) {
				r.logger.Warn("skipping artifact",
					zap.String("user", m.User),
					zap.String("artifact", art.ID),
					zap.String("reason", skip.reason),
				)
				continue
			}
			return rendered, fmt.Errorf("failed to render artifact %s for %s: %w", art.ID, m.User, err)
		}

		if err := r.writeArtifact(m.User, art.ID, svg); err != nil {
			return rendered, err
		}
		art.LastRenderedAt = r.now().UTC().Format(manifest.TimeLayout)
		art.CanonicalURL = fmt.Sprintf("%s/%s/%s.svg", r.urlBase, m.User, art.ID)
		rendered++
	}
	return rendered, nil
}

func (r *Resolver) renderBoard(m *manifest.Manifest, art *manifest.Artifact, records []domain.RepoRecord) ([]byte, error) {
	var opts BoardOptions
	if len(art.Options) > 0 {
		if err := json.Unmarshal(art.Options, &opts); err != nil {
			return nil, skipError{fmt.Sprintf("invalid board options: %v", err)}
		}
	}

	theme := opts.Theme
	if theme == "" {
		theme = art.Theme
	}
	if theme == "" {
		theme = m.Defaults.Theme
	}
	showStars := true
	if opts.ShowStars != nil {
		showStars = *opts.ShowStars
	}
	maxRepos := m.Defaults.MaxRepos
	if opts.MaxRepos != nil {
		maxRepos = *opts.MaxRepos
	}

	rows := TopByDownloads(records, maxRepos)
	return render.Board(m.User, rows, render.BoardParams{Theme: theme, ShowStars: showStars}), nil
}

func (r *Resolver) renderBadge(ctx context.Context, m *manifest.Manifest, art *manifest.Artifact, records []domain.RepoRecord) ([]byte, error) {
	var opts BadgeOptions
	if len(art.Options) > 0 {
		if err := json.Unmarshal(art.Options, &opts); err != nil {
			return nil, skipError{fmt.Sprintf("invalid badge options: %v", err)}
		}
	}
	if opts.BadgeType == "" {
		opts.BadgeType = "stars"
	}

	value, ov, err := ResolveBadgeValue(ctx, r.fetcher, r.logger, m.User, records, opts)
	if err != nil {
		return nil, err
	}

	color := opts.Color
	if ov.Color != "" {
		color = ov.Color
	}
	label := opts.Label
	if label == "" {
		label = ov.Label
	}
	return render.Badge(value, render.BadgeParams{
		Type:       opts.BadgeType,
		Label:      label,
		Color:      color,
		LabelColor: opts.LabelColor,
		TextStyle:  opts.TextStyle,
	}), nil
}

func (r *Resolver) writeArtifact(user, id string, svg []byte) error {
	dir := filepath.Join(r.outDir, user)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, id+".svg")
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}
