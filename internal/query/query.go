// Package query builds GitHub issue search queries from keyword batches.
package query

import (
	"strings"
	"time"

	"github.com/spiffcs/racefinder/internal/duration"
)

// DefaultBatchSize keeps each query within the boolean operator budget of
// the search backend.
const DefaultBatchSize = 2

// reproducibleClause restricts results to issues that talk about reproducing
// the problem.
const reproducibleClause = "(reproducible OR reproduce)"

// Options are the non-keyword qualifiers appended to every query.
type Options struct {
	Status     string   // open or closed
	Languages  []string // rendered as language:<name>
	MinCreated time.Time
}

// Batches splits keywords into consecutive groups of at most size entries.
func Batches(keywords []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]string
	for start := 0; start < len(keywords); start += size {
		end := min(start+size, len(keywords))
		batches = append(batches, keywords[start:end])
	}
	return batches
}

// Build renders the search query for one keyword batch, for example:
//
//	(race OR deadlock) AND (reproducible OR reproduce) is:issue is:closed language:c created:>=2017-01-01
func Build(batch []string, opts Options) string {
	terms := []string{
		"(" + strings.Join(batch, " OR ") + ")",
		"AND",
		reproducibleClause,
		"is:issue",
	}
	if opts.Status != "" {
		terms = append(terms, "is:"+opts.Status)
	}
	for _, lang := range opts.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			terms = append(terms, "language:"+lang)
		}
	}
	if created := duration.Format(opts.MinCreated); created != "" {
		terms = append(terms, "created:>="+created)
	}
	return strings.Join(terms, " ")
}
