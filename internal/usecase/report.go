package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/codefl0w/gh-boards/internal/domain"
)

// Report summarizes the collected metrics for one user.
type Report struct {
	User    string              `json:"user"`
	Repos   []domain.RepoRecord `json:"repos"`
	Summary ReportSummary       `json:"summary"`
}

// ReportSummary aggregates star and download figures across the
// reported repositories.
type ReportSummary struct {
	TotalStars      int     `json:"total_stars"`
	TotalDownloads  int     `json:"total_downloads"`
	MeanDownloads   float64 `json:"mean_downloads"`
	MedianDownloads float64 `json:"median_downloads"`
	MaxDownloads    float64 `json:"max_downloads"`
}

// BuildReport computes summary statistics over the collected records.
// An empty collection yields a zero summary, not an error.
func BuildReport(user string, records []domain.RepoRecord) (*Report, error) {
	report := &Report{User: user, Repos: records}
	if report.Repos == nil {
		report.Repos = []domain.RepoRecord{}
	}
	if len(records) == 0 {
		return report, nil
	}

	downloads := make([]float64, 0, len(records))
	for _, rec := range records {
		report.Summary.TotalStars += rec.Stars
		report.Summary.TotalDownloads += rec.Downloads
		downloads = append(downloads, float64(rec.Downloads))
	}

	mean, err := stats.Mean(downloads)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(downloads)
	if err != nil {
		return nil, err
	}
	maxDownloads, err := stats.Max(downloads)
	if err != nil {
		return nil, err
	}
	report.Summary.MeanDownloads = mean
	report.Summary.MedianDownloads = median
	report.Summary.MaxDownloads = maxDownloads
	return report, nil
}
