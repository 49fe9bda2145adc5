package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/dice-autopilot/internal/types"
)

const summaryFile = "run_summary.json"

// WriteSummary persists the terminal run record, replacing the previous
// run's summary.
func (s *Store) WriteSummary(summary types.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	path := filepath.Join(s.dir, summaryFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run summary: %w", err)
	}
	return nil
}

// ReadSummary loads the last run's summary, if any.
func (s *Store) ReadSummary() (*types.RunSummary, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, summaryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading run summary: %w", err)
	}
	var summary types.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parsing run summary: %w", err)
	}
	return &summary, nil
}
