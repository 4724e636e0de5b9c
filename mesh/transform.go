package mesh

import "fmt"

// Transform maps a scanner's local points into another frame:
// p' = Rotate(p, Rotation) + Translation
type Transform struct {
	Rotation    Rotation `json:"rotation"`
	Translation Point    `json:"translation"`
}

// Identity returns the transform that leaves points where they are
func Identity() Transform {
	return Transform{Rotation: IdentityRotation}
}

// Apply transforms a single point
func (t Transform) Apply(p Point) Point {
	return Rotate(p, t.Rotation).Add(t.Translation)
}

// TransformPoints applies a transform to multiple points
func TransformPoints(points []Point, t Transform) []Point {
	result := make([]Point, len(points))
	for i, p := range points {
		result[i] = t.Apply(p)
	}
	return result
}

// Then chains t, expressed in the frame of parent's scanner, into the frame
// parent maps to. Applying the result equals applying t first, then parent.
func (t Transform) Then(parent Transform) Transform {
	return Transform{
		Rotation:    Compose(t.Rotation, parent.Rotation),
		Translation: parent.Translation.Add(Rotate(t.Translation, parent.Rotation)),
	}
}

// Inverse returns the transform that undoes t
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	neg := Point{X: -t.Translation.X, Y: -t.Translation.Y, Z: -t.Translation.Z}
	return Transform{Rotation: inv, Translation: Rotate(neg, inv)}
}

// Position is where the transformed scanner sits in the target frame
func (t Transform) Position() Point {
	return t.Translation
}

func (t Transform) String() string {
	return fmt.Sprintf("rot=%d%s t=(%s)", t.Rotation, t.Rotation, t.Translation)
}
