package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/racefinder/internal/miner"
	"github.com/spiffcs/racefinder/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// JSONOutput wraps the candidates with the run statistics
type JSONOutput struct {
	Candidates []model.Candidate `json:"candidates"`
	Report     miner.Report      `json:"report"`
}

// Format outputs candidates and the run report as one JSON document
func (f *JSONFormatter) Format(candidates []model.Candidate, report miner.Report, w io.Writer) error {
	if candidates == nil {
		candidates = []model.Candidate{}
	}
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(JSONOutput{Candidates: candidates, Report: report})
}
