// Package report renders run results for the terminal and persists run
// summaries as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

// LoadSummary reads a run summary from a JSON file.
func LoadSummary(filePath string) (*model.RunSummary, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var s model.RunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &s, nil
}

// SaveSummary writes a run summary to a JSON file, creating parent directories.
func SaveSummary(filePath string, s *model.RunSummary) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
