package model

// Candidate is an issue that passed every filter, enriched with the
// metadata of its repository.
type Candidate struct {
	HTMLURL    string `json:"html_issue_url"`
	IssueURL   string `json:"raw_issue_url"`
	RepoURL    string `json:"repo_url"`
	Stars      int    `json:"start_count"` // key name matches reports written by earlier releases
	OpenIssues int    `json:"open_issues_count"`
}

// NewCandidate builds a Candidate from an accepted issue and its repository.
func NewCandidate(issue Issue, repo Repository) Candidate {
	return Candidate{
		HTMLURL:    issue.HTMLURL,
		IssueURL:   issue.URL,
		RepoURL:    issue.RepositoryURL,
		Stars:      repo.Stars,
		OpenIssues: repo.OpenIssues,
	}
}
