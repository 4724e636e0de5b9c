package mesh

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Report is the JSON document describing one assembly run.
type Report struct {
	RunID       string            `json:"runId"`
	GeneratedAt int64             `json:"generatedAt"`
	Metrics     Metrics           `json:"metrics"`
	Scanners    []ScannerPosition `json:"scanners"`
	Beacons     []Point           `json:"beacons,omitempty"`
}

// BuildReport summarises an assembled map. Beacons are included only when
// withBeacons is set since large inputs produce thousands of them.
func BuildReport(gm *GlobalMap, withBeacons bool) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().Unix(),
		Metrics:     ComputeMetrics(gm),
		Scanners:    gm.ScannerPositions(),
	}
	if withBeacons {
		r.Beacons = gm.Beacons()
	}
	return r
}

// Scanner returns the entry for a scanner by name
func (r *Report) Scanner(name string) (ScannerPosition, bool) {
	for _, s := range r.Scanners {
		if s.Name == name {
			return s, true
		}
	}
	return ScannerPosition{}, false
}

// SaveReport writes a report as indented JSON, creating parent directories.
func SaveReport(path string, r *Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}

	return nil
}

// LoadReport reads a report written by SaveReport
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report file: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report file: %w", err)
	}
	if _, err := uuid.Parse(r.RunID); err != nil {
		return nil, fmt.Errorf("report has invalid runId %q: %w", r.RunID, err)
	}

	return &r, nil
}
