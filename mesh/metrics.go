package mesh

// BeaconCount returns the number of distinct beacons in the global frame
func BeaconCount(gm *GlobalMap) int {
	if gm == nil {
		return 0
	}
	return len(gm.beacons)
}

// MaxScannerDistance returns the largest Manhattan distance between any two
// scanner positions. Fewer than two positions yield 0.
func MaxScannerDistance(positions []Point) int {
	best := 0
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			if d := positions[i].Manhattan(positions[j]); d > best {
				best = d
			}
		}
	}
	return best
}

// Metrics are the scalar answers reduced from an assembled map
type Metrics struct {
	BeaconCount        int `json:"beaconCount"`
	MaxScannerDistance int `json:"maxScannerDistance"`
}

// ComputeMetrics reduces a global map to its beacon count and maximum scanner distance
func ComputeMetrics(gm *GlobalMap) Metrics {
	if gm == nil {
		return Metrics{}
	}
	return Metrics{
		BeaconCount:        BeaconCount(gm),
		MaxScannerDistance: MaxScannerDistance(gm.Positions()),
	}
}
