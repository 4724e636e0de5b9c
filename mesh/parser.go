package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// headerMarker opens and closes a scanner header line, e.g. "--- scanner 0 ---"
const headerMarker = "---"

// ParseError reports malformed input together with the offending line number
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// ParseScannerFile reads and parses a scanner report file
func ParseScannerFile(path string) ([]*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scanner file: %w", err)
	}
	defer f.Close()
	return ParseScanners(f)
}

// ParseScanners reads scanner blocks until EOF. Each block is a header line
// followed by one "x,y,z" line per beacon and ends at a blank line or EOF.
// Scanners are numbered in input order starting at 0.
func ParseScanners(r io.Reader) ([]*Scanner, error) {
	var (
		scanners []*Scanner
		name     string
		beacons  []Point
		inBlock  bool
		lineNo   int
	)

	flush := func() {
		if inBlock {
			scanners = append(scanners, NewScanner(len(scanners), name, beacons))
		}
		inBlock = false
		name = ""
		beacons = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			flush()

		case strings.HasPrefix(line, headerMarker):
			if inBlock {
				return nil, &ParseError{Line: lineNo, Msg: "missing blank line before scanner header"}
			}
			n, err := parseHeader(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Msg: err.Error()}
			}
			name = n
			inBlock = true

		default:
			if !inBlock {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("beacon %q outside a scanner block", line)}
			}
			p, err := parsePoint(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Msg: err.Error()}
			}
			beacons = append(beacons, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading scanner input: %w", err)
	}
	flush()

	return scanners, nil
}

func parseHeader(line string) (string, error) {
	if len(line) < 2*len(headerMarker) || !strings.HasSuffix(line, headerMarker) {
		return "", fmt.Errorf("malformed scanner header %q", line)
	}
	inner := strings.TrimSpace(line[len(headerMarker) : len(line)-len(headerMarker)])
	if inner == "" {
		return "", fmt.Errorf("scanner header %q has no name", line)
	}
	return inner, nil
}

func parsePoint(line string) (Point, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return Point{}, fmt.Errorf("expected x,y,z, got %q", line)
	}
	var coords [3]int32
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 32)
		if err != nil {
			return Point{}, fmt.Errorf("invalid coordinate %q in %q", f, line)
		}
		coords[i] = int32(v)
	}
	return Point{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// Summary provides a quick overview of parsed input
type Summary struct {
	ScannerCount int
	BeaconCount  int // Sum of per-scanner beacon counts (duplicates across scanners counted)
	MinBeacons   int
	MaxBeacons   int
}

// Summarize extracts counts from parsed scanners
func Summarize(scanners []*Scanner) Summary {
	s := Summary{ScannerCount: len(scanners)}
	for i, sc := range scanners {
		n := sc.Len()
		s.BeaconCount += n
		if i == 0 || n < s.MinBeacons {
			s.MinBeacons = n
		}
		if n > s.MaxBeacons {
			s.MaxBeacons = n
		}
	}
	return s
}
