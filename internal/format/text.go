// Package format provides text helpers for the terminal summary.
package format

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of a string in terminal columns,
// ignoring ANSI escape sequences.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// Truncate shortens plain text to at most maxWidth columns, ending in "..."
// when anything was cut. It returns the result and its visible width.
func Truncate(s string, maxWidth int) (string, int) {
	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s, width
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", max(maxWidth, 0)), max(maxWidth, 0)
	}
	cut := runewidth.Truncate(s, maxWidth, "...")
	return cut, runewidth.StringWidth(cut)
}

// PadRight pads a string with spaces to reach the target visible width.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}

// Count renders large counts compactly: 950, 1.2k, 48k, 1.3M.
func Count(n int) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 10_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1000)) + "k"
	case n < 1_000_000:
		return fmt.Sprintf("%dk", n/1000)
	default:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "M"
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// RepoName extracts "owner/name" from a repository API URL such as
// https://api.github.com/repos/owner/name. Other URLs are returned unchanged.
func RepoName(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil {
		return apiURL
	}
	_, name, ok := strings.Cut(u.Path, "/repos/")
	name = strings.TrimSuffix(name, "/")
	if !ok || strings.Count(name, "/") != 1 {
		return apiURL
	}
	return name
}

// IssueRef renders an issue HTML URL as "owner/name#123".
func IssueRef(htmlURL string) string {
	u, err := url.Parse(htmlURL)
	if err != nil {
		return htmlURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 || parts[2] != "issues" {
		return htmlURL
	}
	return fmt.Sprintf("%s/%s#%s", parts[0], parts[1], parts[3])
}

// Hyperlink wraps text in an OSC 8 terminal hyperlink.
func Hyperlink(text, target string) string {
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", target, text)
}
