package model

import "time"

// Repository holds the repository metadata the filter and the report need.
type Repository struct {
	URL        string    `json:"url"`
	FullName   string    `json:"fullName"`
	Stars      int       `json:"stars"`
	OpenIssues int       `json:"openIssues"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
