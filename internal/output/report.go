package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spiffcs/racefinder/internal/model"
)

// EncodeReport writes candidates as a JSON array indented by two spaces.
// An empty result is written as [].
func EncodeReport(w io.Writer, candidates []model.Candidate) error {
	if candidates == nil {
		candidates = []model.Candidate{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(candidates)
}

// WriteReport writes the report to path. The file is written to a temporary
// sibling first and renamed into place, so a failed write never leaves a
// partial report behind.
func WriteReport(path string, candidates []model.Candidate) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeReport(tmp, candidates); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
