package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/racefinder/internal/format"
	"github.com/spiffcs/racefinder/internal/miner"
	"github.com/spiffcs/racefinder/internal/model"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct{}

// Column widths
const (
	colRank  = 3
	colStars = 6
	colOpen  = 5
	colRepo  = 30
	colIssue = 40
)

// Format outputs the ranked candidates followed by the funnel statistics
func (f *TableFormatter) Format(candidates []model.Candidate, report miner.Report, w io.Writer) error {
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No matching issues found.")
	} else {
		links := isTerminal(w)

		fmt.Fprintf(w, "%*s  %*s  %*s  %-*s  %s\n",
			colRank, "#",
			colStars, "Stars",
			colOpen, "Open",
			colRepo, "Repository",
			"Issue")
		fmt.Fprintln(w, strings.Repeat("-", colRank+colStars+colOpen+colRepo+colIssue+8))

		for i, c := range candidates {
			repo, repoWidth := format.Truncate(format.RepoName(c.RepoURL), colRepo)

			issue, _ := format.Truncate(format.IssueRef(c.HTMLURL), colIssue)
			if links {
				issue = format.Hyperlink(issue, c.HTMLURL)
			}

			fmt.Fprintf(w, "%*d  %s  %*s  %s  %s\n",
				colRank, i+1,
				color.YellowString("%*s", colStars, format.Count(c.Stars)),
				colOpen, format.Count(c.OpenIssues),
				format.PadRight(repo, repoWidth, colRepo),
				issue,
			)
		}
	}

	printFooterSummary(report, w)
	return nil
}

// printFooterSummary prints how the funnel treated the examined issues
func printFooterSummary(report miner.Report, w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("━", 60))

	fmt.Fprintf(w, "  Examined %d issues from %d queries (%d pages)\n",
		report.Examined, report.Batches, report.Pages)
	fmt.Fprintf(w, "  %s %s accepted, %s rejected\n",
		color.GreenString("●"),
		color.GreenString("%d", report.Accepted),
		color.RedString("%d", report.RejectedTotal()))

	for _, reason := range miner.Reasons {
		if n := report.Rejected[reason]; n > 0 {
			fmt.Fprintf(w, "    %5d  %s\n", n, reason)
		}
	}

	if report.Halted {
		fmt.Fprintf(w, "  %s stopped early: total count reached\n", color.CyanString("○"))
	}
}

// isTerminal reports whether w is an interactive terminal, in which case
// issue references become clickable hyperlinks.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
