// Package server exposes the badge and board renderers as HTTP
// endpoints for on-demand embedding.
package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/codefl0w/gh-boards/internal/gateway"
	"github.com/codefl0w/gh-boards/internal/render"
	"github.com/codefl0w/gh-boards/internal/usecase"
)

// cacheControl keeps rendered SVGs on the CDN for half a day and lets a
// stale copy be served for a day while it revalidates.
const cacheControl = "s-maxage=43200, stale-while-revalidate=86400"

// allowedOrigins are matched as substrings of the Origin header.
var allowedOrigins = []string{
	"codefl0w.xyz",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// Server renders badges and boards on demand. Every response is an SVG
// with status 200; problems are reported inside the image itself so
// embedding <img> tags never break.
type Server struct {
	fetcher    gateway.Fetcher
	aggregator *usecase.Aggregator
	logger     *zap.Logger
}

// New creates a Server backed by the given gateway.
func New(fetcher gateway.Fetcher, logger *zap.Logger) *Server {
	return &Server{
		fetcher:    fetcher,
		aggregator: usecase.NewAggregator(fetcher, logger),
		logger:     logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/badge", s.handleBadge)
	r.Get("/api/board", s.handleBoard)
	return r
}

func corsOrigin(origin string) string {
	if origin != "" {
		for _, allowed := range allowedOrigins {
			if strings.Contains(origin, allowed) {
				return origin
			}
		}
	}
	return "*"
}

func writeSVG(w http.ResponseWriter, origin string, svg []byte) {
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Access-Control-Allow-Origin", corsOrigin(origin))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func truncateError(err error) string {
	msg := err.Error()
	if r := []rune(msg); len(r) > 40 {
		msg = string(r[:40])
	}
	return "error: " + msg
}

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := r.Header.Get("Origin")

	user := q.Get("user")
	if user == "" {
		writeSVG(w, origin, render.ErrorBadge("error: user required"))
		return
	}
	badgeType := q.Get("type")
	if badgeType == "" {
		badgeType = "stars"
	}
	repo := q.Get("repo")
	if badgeType != "followers" && repo == "" {
		writeSVG(w, origin, render.ErrorBadge("error: repo required"))
		return
	}
	if !render.KnownBadgeType(badgeType) {
		writeSVG(w, origin, render.ErrorBadge("unknown type: "+badgeType))
		return
	}

	opts := usecase.BadgeOptions{
		BadgeType:  badgeType,
		Repo:       repo,
		Color:      q.Get("color"),
		LabelColor: q.Get("label_color"),
		TextStyle:  q.Get("text_style"),
		Label:      q.Get("label"),
		Workflow:   q.Get("workflow"),
	}

	value, ov, err := usecase.ResolveBadgeValue(r.Context(), s.fetcher, s.logger, user, nil, opts)
	if err != nil {
		s.logger.Warn("badge resolution failed",
			zap.String("user", user),
			zap.String("type", badgeType),
			zap.Error(err),
		)
		writeSVG(w, origin, render.ErrorBadge(truncateError(err)))
		return
	}

	color := opts.Color
	if ov.Color != "" {
		color = ov.Color
	}
	label := opts.Label
	if label == "" {
		label = ov.Label
	}
	writeSVG(w, origin, render.Badge(value, render.BadgeParams{
		Type:       badgeType,
		Label:      label,
		Color:      color,
		LabelColor: opts.LabelColor,
		TextStyle:  opts.TextStyle,
	}))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := r.Header.Get("Origin")

	user := q.Get("user")
	if user == "" {
		writeSVG(w, origin, render.ErrorBoard("Error: No user specified"))
		return
	}
	theme := q.Get("theme")
	if theme == "" {
		theme = "dark"
	}
	showStarsParam := q.Get("show_stars")
	showStars := showStarsParam == "" || strings.EqualFold(showStarsParam, "true")

	maxRepos := 10
	if v := q.Get("max_repos"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeSVG(w, origin, render.ErrorBoard("Generation Failed: invalid max_repos"))
			return
		}
		maxRepos = parsed
	}

	repos, _, _, err := s.fetcher.FetchTopStarred(r.Context(), user, maxRepos, "")
	if err == nil && len(repos) == 0 {
		repos, err = s.fetcher.FetchAllRepositories(r.Context(), user)
	}
	if err != nil {
		s.logger.Warn("board generation failed",
			zap.String("user", user),
			zap.Error(err),
		)
		writeSVG(w, origin, render.ErrorBoard("Generation Failed: "+err.Error()))
		return
	}

	records := s.aggregator.Collect(r.Context(), user, repos)
	rows := usecase.TopByDownloads(records, maxRepos)
	writeSVG(w, origin, render.Board(user, rows, render.BoardParams{
		Theme:     theme,
		ShowStars: showStars,
	}))
}
