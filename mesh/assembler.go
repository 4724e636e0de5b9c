package mesh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
)

var (
	// ErrNoScanners is returned when there is nothing to assemble
	ErrNoScanners = errors.New("no scanners to assemble")

	// ErrDisconnected is returned when some scanners cannot be linked to the
	// anchor through any chain of overlapping pairs.
	ErrDisconnected = errors.New("cannot complete assembly: scanner overlap graph is disconnected")
)

// GlobalMap is every scanner resolved into the frame of scanner 0, together
// with the deduplicated set of beacons they observe.
type GlobalMap struct {
	Scanners   []*Scanner
	Transforms []Transform // Indexed by scanner ID; maps local -> global
	Parents    []int       // Scanner that each scanner was matched against; -1 for the anchor
	Order      []int       // Scanner IDs in resolution order

	beacons map[Point]struct{}
}

// Assemble resolves every scanner into the frame of scanner 0.
//
// Each pass tries every (resolved, unresolved) pair in index order. A match
// against resolved scanner i yields j's transform relative to i, which is
// chained through i's global transform. Pairs that failed once are never
// retried since scanners are immutable. A pass that resolves nothing means
// the overlap graph is disconnected and assembly stops with ErrDisconnected.
func Assemble(ctx context.Context, scanners []*Scanner, cfg MatchConfig) (*GlobalMap, error) {
	if len(scanners) == 0 {
		return nil, ErrNoScanners
	}

	n := len(scanners)
	gm := &GlobalMap{
		Scanners:   scanners,
		Transforms: make([]Transform, n),
		Parents:    make([]int, n),
		Order:      make([]int, 0, n),
		beacons:    make(map[Point]struct{}),
	}
	resolved := make([]bool, n)
	for i := range gm.Parents {
		gm.Parents[i] = -1
	}

	gm.resolve(0, -1, Identity())
	resolved[0] = true
	remaining := n - 1

	// failed[i][j] records that i and j were compared without overlap.
	failed := make([][]bool, n)
	for i := range failed {
		failed[i] = make([]bool, n)
	}

	for pass := 1; remaining > 0; pass++ {
		progress := 0
		for i := 0; i < n; i++ {
			if !resolved[i] {
				continue
			}
			for j := 0; j < n; j++ {
				if resolved[j] || failed[i][j] {
					continue
				}
				res, err := Intersect(ctx, scanners[i], scanners[j], cfg)
				if err != nil {
					return nil, fmt.Errorf("matching %s against %s: %w",
						scanners[j].Label(), scanners[i].Label(), err)
				}
				if !res.Found {
					failed[i][j] = true
					continue
				}

				global := res.Transform.Then(gm.Transforms[i])
				gm.resolve(j, i, global)
				resolved[j] = true
				remaining--
				progress++
				log.Printf("[ASSEMBLE] pass %d: resolved %s via %s at (%s), %d remaining",
					pass, scanners[j].Label(), scanners[i].Label(), global.Translation, remaining)
			}
		}

		if progress == 0 {
			var missing []string
			for j, ok := range resolved {
				if !ok {
					missing = append(missing, scanners[j].Label())
				}
			}
			return nil, fmt.Errorf("%w: unresolved %s", ErrDisconnected, strings.Join(missing, ", "))
		}
	}

	log.Printf("[ASSEMBLE] resolved %d scanners, %d distinct beacons", n, len(gm.beacons))
	return gm, nil
}

// resolve records a scanner's global transform and folds its beacons into the map.
func (gm *GlobalMap) resolve(id, parent int, t Transform) {
	gm.Transforms[id] = t
	gm.Parents[id] = parent
	gm.Order = append(gm.Order, id)
	for _, p := range gm.Scanners[id].Beacons {
		gm.beacons[t.Apply(p)] = struct{}{}
	}
}

// Beacons returns the distinct global beacon positions sorted by X, then Y, then Z.
func (gm *GlobalMap) Beacons() []Point {
	out := make([]Point, 0, len(gm.beacons))
	for p := range gm.beacons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return out
}

// HasBeacon reports whether p is a beacon in the global frame
func (gm *GlobalMap) HasBeacon(p Point) bool {
	_, ok := gm.beacons[p]
	return ok
}

// Positions returns each scanner's position in the global frame, indexed by scanner ID.
func (gm *GlobalMap) Positions() []Point {
	out := make([]Point, len(gm.Transforms))
	for i, t := range gm.Transforms {
		out[i] = t.Position()
	}
	return out
}

// ScannerPositions describes every resolved scanner, indexed by scanner ID.
func (gm *GlobalMap) ScannerPositions() []ScannerPosition {
	out := make([]ScannerPosition, len(gm.Scanners))
	for i, s := range gm.Scanners {
		t := gm.Transforms[i]
		out[i] = ScannerPosition{
			ID:          s.ID,
			Name:        s.Label(),
			Position:    t.Position(),
			Rotation:    int(t.Rotation),
			Parent:      gm.Parents[i],
			BeaconCount: s.Len(),
		}
	}
	return out
}
