package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codefl0w/gh-boards/internal/domain"
	"github.com/codefl0w/gh-boards/internal/manifest"
)

func TestStatusLabel(t *testing.T) {
	testCases := []struct {
		name          string
		run           *domain.WorkflowRun
		expectedLabel string
		expectedColor string
	}{
		{"no run yet", nil, "no runs", "#6e7681"},
		{"still running", &domain.WorkflowRun{Status: "in_progress"}, "in progress", "#d29922"},
		{"queued", &domain.WorkflowRun{Status: "queued"}, "in progress", "#d29922"},
		{"success", &domain.WorkflowRun{Status: "completed", Conclusion: "success"}, "passing", "#2ea44f"},
		{"failure", &domain.WorkflowRun{Status: "completed", Conclusion: "failure"}, "failed", "#d73a49"},
		{"cancelled", &domain.WorkflowRun{Status: "completed", Conclusion: "cancelled"}, "cancelled", "#6e7681"},
		{"skipped", &domain.WorkflowRun{Status: "completed", Conclusion: "skipped"}, "skipped", "#6e7681"},
		{"timed out", &domain.WorkflowRun{Status: "completed", Conclusion: "timed_out"}, "timed out", "#d73a49"},
		{"no conclusion", &domain.WorkflowRun{Status: "completed"}, "unknown", "#6e7681"},
		{"unrecognized conclusion passes through", &domain.WorkflowRun{Status: "completed", Conclusion: "neutral"}, "neutral", "#6e7681"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			label, color := StatusLabel(tc.run)
			assert.Equal(t, tc.expectedLabel, label)
			assert.Equal(t, tc.expectedColor, color)
		})
	}
}

func TestResolveBadgeValue(t *testing.T) {
	records := []domain.RepoRecord{{Name: "cli", Downloads: 500, Stars: 1200}}

	testCases := []struct {
		name          string
		opts          BadgeOptions
		setup         func(f *mockFetcher)
		expectedValue domain.BadgeValue
		expectedOv    BadgeOverrides
		expectSkip    bool
		expectError   bool
	}{
		{
			name:          "stars comes from collected records without a fetch",
			opts:          BadgeOptions{BadgeType: "stars", Repo: "cli"},
			expectedValue: domain.CountValue(1200),
		},
		{
			name: "stars falls back to a fresh fetch for uncollected repos",
			opts: BadgeOptions{BadgeType: "stars", Repo: "other"},
			setup: func(f *mockFetcher) {
				f.On("FetchRepository", mock.Anything, "octocat", "other").
					Return(&domain.Repository{Name: "other", Stars: 77}, nil)
			},
			expectedValue: domain.CountValue(77),
		},
		{
			name: "stars for a missing repository counts zero",
			opts: BadgeOptions{BadgeType: "stars", Repo: "ghost"},
			setup: func(f *mockFetcher) {
				f.On("FetchRepository", mock.Anything, "octocat", "ghost").Return(nil, nil)
			},
			expectedValue: domain.CountValue(0),
		},
		{
			name:          "downloads comes from collected records",
			opts:          BadgeOptions{BadgeType: "downloads", Repo: "cli"},
			expectedValue: domain.CountValue(500),
		},
		{
			name: "downloads fetch failure counts zero",
			opts: BadgeOptions{BadgeType: "downloads", Repo: "flaky"},
			setup: func(f *mockFetcher) {
				f.On("FetchReleaseDownloadTotal", mock.Anything, "octocat", "flaky").
					Return(0, errors.New("github api error"))
			},
			expectedValue: domain.CountValue(0),
		},
		{
			name: "followers needs no repo option",
			opts: BadgeOptions{BadgeType: "followers"},
			setup: func(f *mockFetcher) {
				f.On("FetchUserProfile", mock.Anything, "octocat", "").
					Return(&domain.UserProfile{Login: "octocat", Followers: 4200}, "", true, nil)
			},
			expectedValue: domain.CountValue(4200),
		},
		{
			name: "followers for a missing user counts zero",
			opts: BadgeOptions{BadgeType: "followers"},
			setup: func(f *mockFetcher) {
				f.On("FetchUserProfile", mock.Anything, "octocat", "").Return(nil, "", true, nil)
			},
			expectedValue: domain.CountValue(0),
		},
		{
			name: "watchers maps to the subscriber count",
			opts: BadgeOptions{BadgeType: "watchers", Repo: "cli"},
			setup: func(f *mockFetcher) {
				f.On("FetchRepository", mock.Anything, "octocat", "cli").
					Return(&domain.Repository{Name: "cli", Subscribers: 88}, nil)
			},
			expectedValue: domain.CountValue(88),
		},
		{
			name: "license renders the license display name",
			opts: BadgeOptions{BadgeType: "license", Repo: "cli"},
			setup: func(f *mockFetcher) {
				f.On("FetchRepository", mock.Anything, "octocat", "cli").
					Return(&domain.Repository{Name: "cli", License: "MIT License"}, nil)
			},
			expectedValue: domain.LabelValue("MIT License"),
		},
		{
			name: "an unlicensed repository forces the red fallback",
			opts: BadgeOptions{BadgeType: "license", Repo: "cli"},
			setup: func(f *mockFetcher) {
				f.On("FetchRepository", mock.Anything, "octocat", "cli").
					Return(&domain.Repository{Name: "cli"}, nil)
			},
			expectedValue: domain.LabelValue("no license"),
			expectedOv:    BadgeOverrides{Color: "#d73a49"},
		},
		{
			name: "workflow success forces green and inherits the run name",
			opts: BadgeOptions{BadgeType: "workflow_status", Repo: "cli", Workflow: "ci.yml"},
			setup: func(f *mockFetcher) {
				f.On("FetchLatestWorkflowRun", mock.Anything, "octocat", "cli", "ci.yml", "").
					Return(&domain.WorkflowRun{Name: "CI", Status: "completed", Conclusion: "success"}, "", true, nil)
			},
			expectedValue: domain.LabelValue("passing"),
			expectedOv:    BadgeOverrides{Color: "#2ea44f", Label: "CI"},
		},
		{
			name: "a workflow that never ran reads no runs",
			opts: BadgeOptions{BadgeType: "workflow_status", Repo: "cli"},
			setup: func(f *mockFetcher) {
				f.On("FetchLatestWorkflowRun", mock.Anything, "octocat", "cli", "", "").
					Return(nil, "", true, nil)
			},
			expectedValue: domain.LabelValue("no runs"),
			expectedOv:    BadgeOverrides{Color: "#6e7681"},
		},
		{
			name:       "a repo-scoped badge without a repo option is skipped",
			opts:       BadgeOptions{BadgeType: "stars"},
			expectSkip: true,
		},
		{
			name:       "unknown badge types are skipped",
			opts:       BadgeOptions{BadgeType: "sparkles", Repo: "cli"},
			expectSkip: true,
		},
		{
			name: "transport failures propagate as hard errors",
			opts: BadgeOptions{BadgeType: "watchers", Repo: "cli"},
			setup: func(f *mockFetcher) {
				f.On("FetchRepository", mock.Anything, "octocat", "cli").
					Return(nil, errors.New("github api error"))
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			if tc.setup != nil {
				tc.setup(fetcher)
			}

			value, ov, err := ResolveBadgeValue(context.Background(), fetcher, zap.NewNop(), "octocat", records, tc.opts)
			switch {
			case tc.expectSkip:
				var skip skipError
				assert.ErrorAs(t, err, &skip)
			case tc.expectError:
				assert.Error(t, err)
				var skip skipError
				assert.False(t, errors.As(err, &skip), "transport failures must not be skippable")
			default:
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedValue, value)
				assert.Equal(t, tc.expectedOv, ov)
			}
			fetcher.AssertExpectations(t)
		})
	}
}

func TestTopByDownloads(t *testing.T) {
	records := []domain.RepoRecord{
		{Name: "low", Downloads: 10},
		{Name: "tie-a", Downloads: 500},
		{Name: "high", Downloads: 9000},
		{Name: "tie-b", Downloads: 500},
	}

	t.Run("sorts by downloads descending and truncates", func(t *testing.T) {
		rows := TopByDownloads(records, 3)
		assert.Equal(t, []domain.RepoRecord{
			{Name: "high", Downloads: 9000},
			{Name: "tie-a", Downloads: 500},
			{Name: "tie-b", Downloads: 500},
		}, rows)
	})

	t.Run("the input slice is not reordered", func(t *testing.T) {
		_ = TopByDownloads(records, 2)
		assert.Equal(t, "low", records[0].Name)
	})

	t.Run("non-positive limits yield no rows", func(t *testing.T) {
		assert.Empty(t, TopByDownloads(records, 0))
		assert.Empty(t, TopByDownloads(records, -3))
	})

	t.Run("a limit beyond the record count returns everything", func(t *testing.T) {
		assert.Len(t, TopByDownloads(records, 50), 4)
	})
}

func newTestResolver(t *testing.T, fetcher *mockFetcher) (*Resolver, string) {
	t.Helper()
	outDir := t.TempDir()
	r := NewResolver(fetcher, zap.NewNop(), outDir)
	r.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	return r, outDir
}

func testManifest(artifacts ...manifest.Artifact) *manifest.Manifest {
	return &manifest.Manifest{
		User:          "octocat",
		SchemaVersion: 1,
		Defaults:      manifest.Defaults{Theme: "dark", Visibility: "public", MaxRepos: 10},
		Selection:     manifest.Selection{Method: manifest.MethodTopStars, Limit: 20},
		Artifacts:     artifacts,
	}
}

func TestResolver_RenderArtifacts(t *testing.T) {
	records := []domain.RepoRecord{
		{Name: "cli", Downloads: 15000, Stars: 1200},
		{Name: "api", Downloads: 42, Stars: 15},
	}

	t.Run("renders active artifacts and stamps provenance", func(t *testing.T) {
		fetcher := new(mockFetcher)
		r, outDir := newTestResolver(t, fetcher)
		m := testManifest(
			manifest.Artifact{ID: "board", Type: manifest.TypeBoard, Status: manifest.StatusActive},
			manifest.Artifact{ID: "cli-stars", Type: manifest.TypeBadge, Status: manifest.StatusActive,
				Options: json.RawMessage(`{"badge_type": "stars", "repo": "cli"}`)},
		)

		rendered, err := r.RenderArtifacts(context.Background(), m, records)
		require.NoError(t, err)
		assert.Equal(t, 2, rendered)

		board, err := os.ReadFile(filepath.Join(outDir, "octocat", "board.svg"))
		require.NoError(t, err)
		assert.Contains(t, string(board), "@octocat")

		badge, err := os.ReadFile(filepath.Join(outDir, "octocat", "cli-stars.svg"))
		require.NoError(t, err)
		assert.Contains(t, string(badge), ">1.2k</text>")

		for _, art := range m.Artifacts {
			assert.Equal(t, "2026-03-14T09:26:53Z", art.LastRenderedAt)
			assert.Equal(t, CanonicalURLBase+"/octocat/"+art.ID+".svg", art.CanonicalURL)
		}
		fetcher.AssertExpectations(t)
	})

	t.Run("paused artifacts are left untouched", func(t *testing.T) {
		fetcher := new(mockFetcher)
		r, outDir := newTestResolver(t, fetcher)
		m := testManifest(manifest.Artifact{ID: "board", Type: manifest.TypeBoard, Status: manifest.StatusPaused})

		rendered, err := r.RenderArtifacts(context.Background(), m, records)
		require.NoError(t, err)
		assert.Zero(t, rendered)
		assert.Empty(t, m.Artifacts[0].LastRenderedAt)
		_, statErr := os.Stat(filepath.Join(outDir, "octocat", "board.svg"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("skippable artifacts do not stop the run", func(t *testing.T) {
		fetcher := new(mockFetcher)
		r, outDir := newTestResolver(t, fetcher)
		m := testManifest(
			manifest.Artifact{ID: "broken", Type: manifest.TypeBadge, Status: manifest.StatusActive,
				Options: json.RawMessage(`{"badge_type": "stars"}`)},
			manifest.Artifact{ID: "mystery", Type: "banner", Status: manifest.StatusActive},
			manifest.Artifact{ID: "garbled", Type: manifest.TypeBoard, Status: manifest.StatusActive,
				Options: json.RawMessage(`{"max_repos": "ten"}`)},
			manifest.Artifact{ID: "board", Type: manifest.TypeBoard, Status: manifest.StatusActive},
		)

		rendered, err := r.RenderArtifacts(context.Background(), m, records)
		require.NoError(t, err)
		assert.Equal(t, 1, rendered)
		assert.Empty(t, m.Artifacts[0].LastRenderedAt)
		assert.Empty(t, m.Artifacts[1].LastRenderedAt)
		assert.Empty(t, m.Artifacts[2].LastRenderedAt)
		assert.NotEmpty(t, m.Artifacts[3].LastRenderedAt)
		_, statErr := os.Stat(filepath.Join(outDir, "octocat", "board.svg"))
		assert.NoError(t, statErr)
	})

	t.Run("transport failures abort and report progress", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchRepository", mock.Anything, "octocat", "cli").
			Return(nil, errors.New("github api error"))
		r, _ := newTestResolver(t, fetcher)
		m := testManifest(
			manifest.Artifact{ID: "board", Type: manifest.TypeBoard, Status: manifest.StatusActive},
			manifest.Artifact{ID: "watchers", Type: manifest.TypeBadge, Status: manifest.StatusActive,
				Options: json.RawMessage(`{"badge_type": "watchers", "repo": "cli"}`)},
		)

		rendered, err := r.RenderArtifacts(context.Background(), m, records)
		assert.Error(t, err)
		assert.Equal(t, 1, rendered)
		assert.NotEmpty(t, m.Artifacts[0].LastRenderedAt)
		assert.Empty(t, m.Artifacts[1].LastRenderedAt)
		fetcher.AssertExpectations(t)
	})

	t.Run("board options override the manifest defaults", func(t *testing.T) {
		fetcher := new(mockFetcher)
		r, outDir := newTestResolver(t, fetcher)
		m := testManifest(manifest.Artifact{ID: "board", Type: manifest.TypeBoard, Status: manifest.StatusActive,
			Options: json.RawMessage(`{"theme": "light", "max_repos": 1, "show_stars": false}`)})

		_, err := r.RenderArtifacts(context.Background(), m, records)
		require.NoError(t, err)

		svg, err := os.ReadFile(filepath.Join(outDir, "octocat", "board.svg"))
		require.NoError(t, err)
		assert.Contains(t, string(svg), `fill="#ffffff" stroke="#d0d7de"`, "light palette")
		assert.Contains(t, string(svg), "1 Repositories")
	})

	t.Run("the artifact theme field applies when options omit one", func(t *testing.T) {
		fetcher := new(mockFetcher)
		r, outDir := newTestResolver(t, fetcher)
		m := testManifest(manifest.Artifact{ID: "board", Type: manifest.TypeBoard, Status: manifest.StatusActive,
			Theme: "light"})

		_, err := r.RenderArtifacts(context.Background(), m, records)
		require.NoError(t, err)

		svg, err := os.ReadFile(filepath.Join(outDir, "octocat", "board.svg"))
		require.NoError(t, err)
		assert.Contains(t, string(svg), `fill="#ffffff" stroke="#d0d7de"`)
	})

	t.Run("workflow badges force the status color over the configured one", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchLatestWorkflowRun", mock.Anything, "octocat", "cli", "", "").
			Return(&domain.WorkflowRun{Name: "CI", Status: "completed", Conclusion: "success"}, "", true, nil)
		r, outDir := newTestResolver(t, fetcher)
		m := testManifest(manifest.Artifact{ID: "ci", Type: manifest.TypeBadge, Status: manifest.StatusActive,
			Options: json.RawMessage(`{"badge_type": "workflow_status", "repo": "cli", "color": "#123456"}`)})

		rendered, err := r.RenderArtifacts(context.Background(), m, records)
		require.NoError(t, err)
		assert.Equal(t, 1, rendered)

		svg, err := os.ReadFile(filepath.Join(outDir, "octocat", "ci.svg"))
		require.NoError(t, err)
		assert.Contains(t, string(svg), ">passing</text>")
		assert.Contains(t, string(svg), ">CI</text>", "run name becomes the label")
		assert.Contains(t, string(svg), "#2ea44f")
		assert.NotContains(t, string(svg), "#123456")
		fetcher.AssertExpectations(t)
	})
}
