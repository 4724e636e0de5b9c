package mesh

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MatchResult is the outcome of a pairwise overlap search.
// When Found is true, Transform maps b's local points into a's local frame.
type MatchResult struct {
	Transform Transform
	Found     bool
}

// Intersect searches for a rotation and translation that make at least
// cfg.Threshold beacons of b coincide exactly with beacons of a.
//
// The 24 rotation branches are independent and run concurrently; the first
// branch to reach the threshold cancels the others. If several branches
// succeed before cancellation is observed the lowest rotation is kept.
//
// A missing overlap is not an error; err is only set when ctx is cancelled.
func Intersect(ctx context.Context, a, b *Scanner, cfg MatchConfig) (MatchResult, error) {
	cfg = cfg.normalized()

	if a.Len() < cfg.Threshold || b.Len() < cfg.Threshold {
		return MatchResult{}, nil
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu   sync.Mutex
		best MatchResult
	)

	g, gctx := errgroup.WithContext(searchCtx)
	g.SetLimit(cfg.Workers)

	for _, rot := range AllRotations() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			t, ok := searchRotation(gctx, a, b, rot, cfg.Threshold)
			if !ok {
				return nil
			}
			mu.Lock()
			if !best.Found || rot < best.Transform.Rotation {
				best = MatchResult{
					Transform: Transform{Rotation: rot, Translation: t},
					Found:     true,
				}
			}
			mu.Unlock()
			cancel()
			return nil
		})
	}
	_ = g.Wait()

	// A caller-side cancellation outranks anything found in the meantime.
	if err := ctx.Err(); err != nil {
		return MatchResult{}, err
	}

	if cfg.Verbose {
		if best.Found {
			log.Printf("[MATCH] %s <- %s: %s", a.Label(), b.Label(), best.Transform)
		} else {
			log.Printf("[MATCH] %s <- %s: no overlap", a.Label(), b.Label())
		}
	}
	return best, nil
}

// searchRotation tries every anchor pair under a single rotation. It returns
// the translation t such that Rotate(p, rot) + t lands at least threshold of
// b's beacons on beacons of a.
func searchRotation(ctx context.Context, a, b *Scanner, rot Rotation, threshold int) (Point, bool) {
	inv := rot.Inverse()

	for _, anchorA := range a.Beacons {
		// Checking once per outer anchor keeps cancellation cheap.
		if ctx.Err() != nil {
			return Point{}, false
		}
		for _, anchorB := range b.Beacons {
			t := anchorA.Sub(Rotate(anchorB, rot))
			if countCoincident(a, b, t, inv, threshold) >= threshold {
				return t, true
			}
		}
	}
	return Point{}, false
}

// countCoincident counts beacons of a that, moved into b's frame, are beacons
// of b. It stops early once the remaining candidates cannot reach threshold,
// and as soon as threshold is reached.
func countCoincident(a, b *Scanner, t Point, inv Rotation, threshold int) int {
	count := 0
	remaining := a.Len()
	for _, p := range a.Beacons {
		if count+remaining < threshold {
			break
		}
		if b.Has(Rotate(p.Sub(t), inv)) {
			count++
			if count >= threshold {
				break
			}
		}
		remaining--
	}
	return count
}

// normalized fills zero values with defaults and clamps workers.
func (c MatchConfig) normalized() MatchConfig {
	if c.Threshold <= 0 {
		c.Threshold = DefaultOverlapThreshold
	}
	if c.Workers <= 0 || c.Workers > RotationCount {
		c.Workers = RotationCount
	}
	return c
}
