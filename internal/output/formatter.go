// Package output renders search results: the JSON report artifact and the
// summary printed to stdout after a run.
package output

import (
	"fmt"
	"io"

	"github.com/spiffcs/racefinder/internal/miner"
	"github.com/spiffcs/racefinder/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatNone  Format = "none"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatNone:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use %s, %s or %s)", s, FormatTable, FormatJSON, FormatNone)
	}
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(candidates []model.Candidate, report miner.Report, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatNone:
		return noneFormatter{}
	default:
		return &TableFormatter{}
	}
}

type noneFormatter struct{}

func (noneFormatter) Format([]model.Candidate, miner.Report, io.Writer) error {
	return nil
}
