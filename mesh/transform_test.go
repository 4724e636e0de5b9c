package mesh

import (
	"testing"
)

func TestTransform_Apply(t *testing.T) {
	tests := []struct {
		name  string
		point Point
		tr    Transform
		want  Point
	}{
		{
			name:  "identity transform",
			point: Point{X: 10, Y: 20, Z: 30},
			tr:    Identity(),
			want:  Point{X: 10, Y: 20, Z: 30},
		},
		{
			name:  "translation only",
			point: Point{X: 5, Y: 5, Z: 5},
			tr:    Transform{Translation: Point{X: 10, Y: -15, Z: 1}},
			want:  Point{X: 15, Y: -10, Z: 6},
		},
		{
			name:  "rotation then translation",
			point: Point{X: 1, Y: 2, Z: 3},
			tr:    Transform{Rotation: 5, Translation: Point{X: 100, Y: 100, Z: 100}},
			want:  Rotate(Point{X: 1, Y: 2, Z: 3}, 5).Add(Point{X: 100, Y: 100, Z: 100}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Apply(tt.point); got != tt.want {
				t.Errorf("Apply(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestTransform_ThenChainsIntoParentFrame(t *testing.T) {
	p := Point{X: -618, Y: -824, Z: -621}
	for _, r1 := range AllRotations() {
		for _, r2 := range []Rotation{0, 3, 11, 17, 23} {
			child := Transform{Rotation: r1, Translation: Point{X: 68, Y: -1246, Z: -43}}
			parent := Transform{Rotation: r2, Translation: Point{X: -20, Y: -1133, Z: 1061}}

			want := parent.Apply(child.Apply(p))
			if got := child.Then(parent).Apply(p); got != want {
				t.Fatalf("child(rot %d).Then(parent rot %d).Apply = %v, want %v", r1, r2, got, want)
			}
		}
	}
}

func TestTransform_ThenIdentity(t *testing.T) {
	tr := Transform{Rotation: 9, Translation: Point{X: 1, Y: 2, Z: 3}}
	if got := tr.Then(Identity()); got != tr {
		t.Errorf("tr.Then(identity) = %v, want %v", got, tr)
	}
	if got := Identity().Then(tr); got != tr {
		t.Errorf("identity.Then(tr) = %v, want %v", got, tr)
	}
}

func TestTransform_Inverse(t *testing.T) {
	for _, r := range AllRotations() {
		tr := Transform{Rotation: r, Translation: Point{X: 1105, Y: -1205, Z: 1229}}
		inv := tr.Inverse()
		for _, p := range probePoints {
			if got := inv.Apply(tr.Apply(p)); got != p {
				t.Errorf("rotation %d: inverse round trip of %v gave %v", r, p, got)
			}
		}
	}
}

func TestTransform_Position(t *testing.T) {
	tr := Transform{Rotation: 4, Translation: Point{X: -92, Y: -2380, Z: -20}}
	// The scanner sits at the image of its own origin.
	if got := tr.Apply(Point{}); got != tr.Position() {
		t.Errorf("Apply(origin) = %v, Position() = %v", got, tr.Position())
	}
}

func TestTransformPoints(t *testing.T) {
	tr := Transform{Rotation: 2, Translation: Point{X: 1, Y: 1, Z: 1}}
	in := []Point{{X: 1}, {Y: 1}, {Z: 1}}
	out := TransformPoints(in, tr)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != tr.Apply(in[i]) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], tr.Apply(in[i]))
		}
	}
}

func TestPoint_Manhattan(t *testing.T) {
	a := Point{X: 1105, Y: -1205, Z: 1229}
	b := Point{X: -92, Y: -2380, Z: -20}
	if got := a.Manhattan(b); got != 3621 {
		t.Errorf("Manhattan = %d, want 3621", got)
	}
	if got := b.Manhattan(a); got != 3621 {
		t.Errorf("Manhattan is not symmetric: %d", got)
	}
	if got := a.Manhattan(a); got != 0 {
		t.Errorf("Manhattan to self = %d, want 0", got)
	}
}
