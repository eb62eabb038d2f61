// Package manifest reads and writes the per-user manifest documents
// that declare which repositories to select and which SVG artifacts
// to render. Fields this package does not know about round-trip
// through a save unchanged.
package manifest

import (
	"encoding/json"
	"strings"
)

// TimeLayout is the timestamp format used throughout manifests.
const TimeLayout = "2006-01-02T15:04:05Z"

const (
	DefaultTheme    = "dark"
	DefaultMaxRepos = 10
	DefaultLimit    = 20

	MethodTopStars = "top_stars"
	MethodAll      = "all"

	StatusActive = "active"
	StatusPaused = "paused"

	TypeBoard = "board"
	TypeBadge = "badge"
)

// Defaults carries manifest-level display defaults.
type Defaults struct {
	Theme      string `json:"theme"`
	Visibility string `json:"visibility"`
	MaxRepos   int    `json:"max_repos"`
}

// Selection declares how the repository list is chosen when no
// explicit targets are given.
type Selection struct {
	Method string `json:"method"`
	Limit  int    `json:"limit"`
}

// Targets pins the repository list to an explicit set, overriding
// the selection policy.
type Targets struct {
	Repos []string `json:"repos"`
}

// CacheState holds the listing-level revision token and the time it
// was last checked against the source.
type CacheState struct {
	ReposRevision string `json:"repos_etag,omitempty"`
	LastChecked   string `json:"last_checked,omitempty"`
}

// Meta records pipeline provenance.
type Meta struct {
	LastProcessedBy string `json:"last_processed_by,omitempty"`
	LastProcessedAt string `json:"last_processed_at,omitempty"`
}

// Artifact is one declared renderable output.
type Artifact struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Style   string          `json:"style,omitempty"`
	Status  string          `json:"status,omitempty"`
	Theme   string          `json:"theme,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`

	// Written only after a successful render.
	LastRenderedAt string `json:"last_rendered_at,omitempty"`
	CanonicalURL   string `json:"canonical_url,omitempty"`
}

// Manifest is one user's declarative configuration. Load returns it
// fully normalized: user, theme, selection, and artifact defaults are
// populated so callers never re-derive them.
type Manifest struct {
	User          string     `json:"user"`
	SchemaVersion int        `json:"schema_version"`
	Defaults      Defaults   `json:"defaults"`
	Selection     Selection  `json:"select"`
	Targets       Targets    `json:"targets"`
	Cache         CacheState `json:"cache"`
	Artifacts     []Artifact `json:"artifacts"`
	CreatedOn     string     `json:"created_on"`
	LastUpdate    string     `json:"last_update"`
	Meta          Meta       `json:"meta"`

	// raw keeps every top-level field from the source document so
	// unknown fields survive a save.
	raw map[string]json.RawMessage
}

// legacyBoardArtifact is injected into manifests that predate the
// artifacts list.
func legacyBoardArtifact() Artifact {
	return Artifact{
		ID:      "board",
		Type:    TypeBoard,
		Style:   "board_stars_downloads",
		Status:  StatusActive,
		Options: json.RawMessage(`{"max_repos": 10, "show_stars": true}`),
	}
}

// normalize fills defaults in place. stem is the manifest filename
// without extension, used when the document names no user.
func (m *Manifest) normalize(stem string) {
	m.User = strings.TrimSpace(m.User)
	if m.User == "" {
		m.User = stem
	}
	if m.Defaults.Theme == "" {
		m.Defaults.Theme = DefaultTheme
	}
	if m.Defaults.MaxRepos <= 0 {
		m.Defaults.MaxRepos = DefaultMaxRepos
	}
	if m.Selection.Method == "" {
		m.Selection.Method = MethodTopStars
	}
	if m.Selection.Limit == 0 {
		m.Selection.Limit = DefaultLimit
	}
	if len(m.Artifacts) == 0 {
		m.Artifacts = []Artifact{legacyBoardArtifact()}
	}
	for i := range m.Artifacts {
		a := &m.Artifacts[i]
		if a.ID == "" {
			a.ID = "board"
		}
		if a.Type == "" {
			a.Type = TypeBoard
		}
		if a.Status == "" {
			a.Status = StatusActive
		}
	}
}
