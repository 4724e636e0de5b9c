package mesh

import "fmt"

// Point is an integer position in a scanner's local frame or in the global frame.
// Coordinates are int32 so sums and differences of puzzle-scale values never wrap.
type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// Add returns p + q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Manhattan returns |dx| + |dy| + |dz| between p and q
func (p Point) Manhattan(q Point) int {
	return absInt(int(p.X)-int(q.X)) + absInt(int(p.Y)-int(q.Y)) + absInt(int(p.Z)-int(q.Z))
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Scanner is the set of beacons reported by one sensor in its own local frame.
// Beacons keeps input order (duplicates removed); the set backs membership tests.
type Scanner struct {
	ID      int
	Name    string
	Beacons []Point

	set map[Point]struct{}
}

// NewScanner builds a scanner from raw beacon positions. Duplicate positions collapse.
func NewScanner(id int, name string, beacons []Point) *Scanner {
	s := &Scanner{
		ID:      id,
		Name:    name,
		Beacons: make([]Point, 0, len(beacons)),
		set:     make(map[Point]struct{}, len(beacons)),
	}
	for _, p := range beacons {
		if _, dup := s.set[p]; dup {
			continue
		}
		s.set[p] = struct{}{}
		s.Beacons = append(s.Beacons, p)
	}
	return s
}

// Has reports whether p is one of the scanner's beacons
func (s *Scanner) Has(p Point) bool {
	_, ok := s.set[p]
	return ok
}

// Len returns the number of distinct beacons
func (s *Scanner) Len() int {
	return len(s.Beacons)
}

// Label returns the scanner's header name, falling back to its index.
func (s *Scanner) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("scanner %d", s.ID)
}

// ScannerPosition is a resolved scanner expressed in the global frame
type ScannerPosition struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Position    Point  `json:"position"`
	Rotation    int    `json:"rotation"`
	Parent      int    `json:"parent"` // -1 for the anchor scanner
	BeaconCount int    `json:"beaconCount"`
}

// MatchConfig tunes the pairwise matcher
type MatchConfig struct {
	Threshold int  `yaml:"threshold" json:"threshold"` // Beacons that must coincide for an overlap
	Workers   int  `yaml:"workers" json:"workers"`     // Concurrent rotation branches (0 = one per rotation)
	Verbose   bool `yaml:"verbose" json:"verbose"`     // Log every pairwise attempt
}

// DefaultMatchConfig returns the settings the overlap rule is defined with.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Threshold: DefaultOverlapThreshold,
		Workers:   RotationCount,
	}
}

// DefaultOverlapThreshold is the number of shared beacons that proves two scanners overlap.
const DefaultOverlapThreshold = 12

// OutputConfig names the optional artifacts written after assembly
type OutputConfig struct {
	Report  string  `yaml:"report,omitempty" json:"report,omitempty"`
	GeoJSON string  `yaml:"geojson,omitempty" json:"geojson,omitempty"`
	Render  string  `yaml:"render,omitempty" json:"render,omitempty"`
	Format  string  `yaml:"format,omitempty" json:"format,omitempty"` // raster, vector or both
	Scale   float64 `yaml:"scale,omitempty" json:"scale,omitempty"`   // Pixels per coordinate unit for raster output
}

// Config represents the full configuration file
type Config struct {
	Matcher MatchConfig  `yaml:"matcher" json:"matcher"`
	Output  OutputConfig `yaml:"output" json:"output"`
	MQTT    MQTTConfig   `yaml:"mqtt" json:"mqtt"`
	HTTP    HTTPConfig   `yaml:"http" json:"http"`
}

// MQTTConfig holds MQTT connection settings
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// HTTPConfig holds settings for the result server
type HTTPConfig struct {
	Port int `yaml:"port" json:"port"`
}
