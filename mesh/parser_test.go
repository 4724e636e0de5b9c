package mesh

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const exampleInputPath = "testdata/example.txt"

func TestParseScanners_Example(t *testing.T) {
	scanners, err := ParseScannerFile(exampleInputPath)
	if err != nil {
		t.Fatalf("ParseScannerFile() error = %v", err)
	}

	if len(scanners) != 5 {
		t.Fatalf("got %d scanners, want 5", len(scanners))
	}

	wantCounts := []int{25, 25, 26, 25, 26}
	for i, s := range scanners {
		if s.ID != i {
			t.Errorf("scanner %d has ID %d", i, s.ID)
		}
		if want := "scanner " + string(rune('0'+i)); s.Name != want {
			t.Errorf("scanner %d name = %q, want %q", i, s.Name, want)
		}
		if s.Len() != wantCounts[i] {
			t.Errorf("scanner %d has %d beacons, want %d", i, s.Len(), wantCounts[i])
		}
	}

	first := scanners[0].Beacons[0]
	if want := (Point{X: 404, Y: -588, Z: -901}); first != want {
		t.Errorf("first beacon = %v, want %v", first, want)
	}
	if !scanners[4].Has(Point{X: 30, Y: -46, Z: -14}) {
		t.Error("scanner 4 should contain its last beacon 30,-46,-14")
	}

	summary := Summarize(scanners)
	if summary.ScannerCount != 5 || summary.BeaconCount != 127 {
		t.Errorf("Summarize = %+v, want 5 scanners and 127 beacons", summary)
	}
	if summary.MinBeacons != 25 || summary.MaxBeacons != 26 {
		t.Errorf("Summarize min/max = %d/%d, want 25/26", summary.MinBeacons, summary.MaxBeacons)
	}
}

func TestParseScanners_Tolerated(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantLens  []int
	}{
		{
			name:      "empty input",
			input:     "",
			wantCount: 0,
		},
		{
			name:      "only blank lines",
			input:     "\n\n  \n",
			wantCount: 0,
		},
		{
			name:      "no trailing newline",
			input:     "--- scanner 0 ---\n1,2,3",
			wantCount: 1,
			wantLens:  []int{1},
		},
		{
			name:      "multiple blank lines between blocks",
			input:     "--- scanner 0 ---\n1,2,3\n\n\n\n--- scanner 1 ---\n4,5,6\n",
			wantCount: 2,
			wantLens:  []int{1, 1},
		},
		{
			name:      "indented lines and spaces after commas",
			input:     "   --- scanner 0 ---\n  1, 2, 3\n\t-4,-5,-6\n",
			wantCount: 1,
			wantLens:  []int{2},
		},
		{
			name:      "header with no beacons",
			input:     "--- scanner 0 ---\n\n--- scanner 1 ---\n1,1,1\n",
			wantCount: 2,
			wantLens:  []int{0, 1},
		},
		{
			name:      "duplicate beacons collapse",
			input:     "--- scanner 0 ---\n1,2,3\n1,2,3\n4,5,6\n",
			wantCount: 1,
			wantLens:  []int{2},
		},
		{
			name:      "windows line endings",
			input:     "--- scanner 0 ---\r\n1,2,3\r\n\r\n--- scanner 1 ---\r\n4,5,6\r\n",
			wantCount: 2,
			wantLens:  []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanners, err := ParseScanners(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseScanners() error = %v", err)
			}
			if len(scanners) != tt.wantCount {
				t.Fatalf("got %d scanners, want %d", len(scanners), tt.wantCount)
			}
			for i, want := range tt.wantLens {
				if scanners[i].Len() != want {
					t.Errorf("scanner %d has %d beacons, want %d", i, scanners[i].Len(), want)
				}
			}
		})
	}
}

func TestParseScanners_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "beacon before any header",
			input:    "1,2,3\n",
			wantLine: 1,
			wantMsg:  "outside a scanner block",
		},
		{
			name:     "two coordinates",
			input:    "--- scanner 0 ---\n1,2\n",
			wantLine: 2,
			wantMsg:  "expected x,y,z",
		},
		{
			name:     "four coordinates",
			input:    "--- scanner 0 ---\n1,2,3,4\n",
			wantLine: 2,
			wantMsg:  "expected x,y,z",
		},
		{
			name:     "non-numeric coordinate",
			input:    "--- scanner 0 ---\n1,two,3\n",
			wantLine: 2,
			wantMsg:  "invalid coordinate",
		},
		{
			name:     "coordinate overflows int32",
			input:    "--- scanner 0 ---\n1,2,99999999999\n",
			wantLine: 2,
			wantMsg:  "invalid coordinate",
		},
		{
			name:     "unterminated header",
			input:    "--- scanner 0\n1,2,3\n",
			wantLine: 1,
			wantMsg:  "malformed scanner header",
		},
		{
			name:     "header without name",
			input:    "--- ---\n1,2,3\n",
			wantLine: 1,
			wantMsg:  "has no name",
		},
		{
			name:     "header inside a block",
			input:    "--- scanner 0 ---\n1,2,3\n--- scanner 1 ---\n",
			wantLine: 3,
			wantMsg:  "missing blank line",
		},
		{
			name:     "beacon after block closed by blank line",
			input:    "--- scanner 0 ---\n1,2,3\n\n4,5,6\n",
			wantLine: 4,
			wantMsg:  "outside a scanner block",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScanners(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected an error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("error line = %d, want %d", pe.Line, tt.wantLine)
			}
			if !strings.Contains(pe.Msg, tt.wantMsg) {
				t.Errorf("error message %q does not contain %q", pe.Msg, tt.wantMsg)
			}
		})
	}
}

func TestParseScannerFile_Missing(t *testing.T) {
	_, err := ParseScannerFile(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v should wrap os.ErrNotExist", err)
	}
}

func TestScanner_Label(t *testing.T) {
	named := NewScanner(3, "scanner 3", nil)
	if named.Label() != "scanner 3" {
		t.Errorf("Label() = %q", named.Label())
	}
	anonymous := NewScanner(7, "", nil)
	if anonymous.Label() != "scanner 7" {
		t.Errorf("Label() = %q, want fallback to index", anonymous.Label())
	}
}
