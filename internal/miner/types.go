// Package miner implements the search pipeline: keyword batches are turned
// into issue searches, every hit runs through an ordered rejection funnel,
// and the accepted candidates are ranked by repository popularity.
package miner

import (
	"fmt"
	"time"
)

// Signal tells an enclosing loop whether to keep going.
type Signal int

const (
	Continue Signal = iota
	Halt
)

// PaginationPolicy decides what a failed continuation page means.
type PaginationPolicy string

const (
	// PaginationStop treats a failed continuation page as the last page.
	PaginationStop PaginationPolicy = "stop"
	// PaginationFail aborts the run when a continuation page fails.
	PaginationFail PaginationPolicy = "fail"
)

// ParsePaginationPolicy validates a policy name; empty selects PaginationStop.
func ParsePaginationPolicy(s string) (PaginationPolicy, error) {
	switch PaginationPolicy(s) {
	case "", PaginationStop:
		return PaginationStop, nil
	case PaginationFail:
		return PaginationFail, nil
	default:
		return "", fmt.Errorf("invalid pagination policy %q (use %s or %s)", s, PaginationStop, PaginationFail)
	}
}

// Settings is the resolved search configuration for one run. Zero values
// disable the corresponding filter; a zero cap is unbounded.
type Settings struct {
	SearchKeywords []string
	BatchSize      int
	IssueStatus    string
	Languages      []string
	MinCreated     time.Time
	PerPage        int

	IssueLabels       []string
	ExclusionKeywords []string
	CodeKeywords      []string
	ExcludedIssueURLs []string
	MinStars          int
	MinRepoUpdated    time.Time

	TotalCap int
	TopN     int

	PaginationFailure PaginationPolicy
}

// Reason names the funnel stage that rejected an issue.
type Reason string

const (
	ReasonDuplicate Reason = "already processed"
	ReasonExcluded  Reason = "present in exclusion list"
	ReasonLabels    Reason = "contains irrelevant labels"
	ReasonContent   Reason = "content contains excluded keyword"
	ReasonStale     Reason = "repository too old"
	ReasonStars     Reason = "small stars count"
	ReasonNoCode    Reason = "required keywords not found in repository code"
)

// Reasons lists the funnel stages in evaluation order.
var Reasons = []Reason{
	ReasonDuplicate,
	ReasonExcluded,
	ReasonLabels,
	ReasonContent,
	ReasonStale,
	ReasonStars,
	ReasonNoCode,
}

// Report summarizes one run of the pipeline.
type Report struct {
	Batches  int            `json:"batches"`
	Pages    int            `json:"pages"`
	Examined int            `json:"examined"`
	Accepted int            `json:"accepted"`
	Rejected map[Reason]int `json:"rejected"`
	Halted   bool           `json:"halted"` // the total cap was reached
}

// RejectedTotal sums rejections over every reason.
func (r Report) RejectedTotal() int {
	total := 0
	for _, n := range r.Rejected {
		total += n
	}
	return total
}
