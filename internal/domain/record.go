// Package domain contains the core data structures and domain logic for the application.
package domain

// RepoSummary identifies a repository in a listing along with its star count.
type RepoSummary struct {
	Name  string `json:"name"`
	Stars int    `json:"stars"`
}

// RepoRecord holds the display metrics for a single repository.
// It is the core domain entity of this application.
type RepoRecord struct {
	Name      string `json:"name"`
	Downloads int    `json:"downloads"`
	Stars     int    `json:"stars"`
}

// Repository holds the detail fields fetched for a single repository.
// License is the license display name, empty when the repository has none.
type Repository struct {
	Name        string `json:"name"`
	Stars       int    `json:"stars"`
	Subscribers int    `json:"subscribers"`
	License     string `json:"license"`
}

// UserProfile holds the public profile fields for a user.
type UserProfile struct {
	Login     string `json:"login"`
	Followers int    `json:"followers"`
}

// WorkflowRun holds the state of the most recent run of a workflow.
type WorkflowRun struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}
