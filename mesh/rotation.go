package mesh

import "fmt"

// RotationCount is the number of proper axis-aligned rotations of a cube.
const RotationCount = 24

// Rotation identifies one of the 24 axis-aligned, handedness-preserving
// orientations. The zero value is the identity.
type Rotation uint8

// IdentityRotation leaves every point unchanged
const IdentityRotation Rotation = 0

// signedAxes describes a rotation as a signed permutation: output component i
// is sign[i] * input component axis[i].
type signedAxes struct {
	axis [3]uint8
	sign [3]int32
}

// Lookup tables filled once by init and read-only afterwards.
var (
	rotations [RotationCount]signedAxes
	inverses  [RotationCount]Rotation
	composed  [RotationCount][RotationCount]Rotation
)

func init() {
	buildRotations()
	buildComposition()
	buildInverses()
}

// buildRotations enumerates signed axis permutations and keeps those with
// determinant +1. The identity permutation with all-positive signs comes first.
func buildRotations() {
	perms := [6][3]uint8{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	parity := [6]int32{1, -1, -1, 1, 1, -1}

	n := 0
	for pi, perm := range perms {
		for mask := 0; mask < 8; mask++ {
			var sign [3]int32
			det := parity[pi]
			for i := 0; i < 3; i++ {
				sign[i] = 1
				if mask&(1<<i) != 0 {
					sign[i] = -1
				}
				det *= sign[i]
			}
			if det != 1 {
				continue
			}
			rotations[n] = signedAxes{axis: perm, sign: sign}
			n++
		}
	}
	if n != RotationCount {
		panic(fmt.Sprintf("mesh: enumerated %d rotations, want %d", n, RotationCount))
	}
}

var basis = [3]Point{{X: 1}, {Y: 1}, {Z: 1}}

// buildComposition probes the three basis vectors through r1 then r2 and
// searches for the single rotation producing the same images.
func buildComposition() {
	for r1 := Rotation(0); r1 < RotationCount; r1++ {
		for r2 := Rotation(0); r2 < RotationCount; r2++ {
			composed[r1][r2] = probe(func(p Point) Point {
				return Rotate(Rotate(p, r1), r2)
			})
		}
	}
}

func probe(apply func(Point) Point) Rotation {
	var images [3]Point
	for i, e := range basis {
		images[i] = apply(e)
	}
	for r := Rotation(0); r < RotationCount; r++ {
		if Rotate(basis[0], r) == images[0] &&
			Rotate(basis[1], r) == images[1] &&
			Rotate(basis[2], r) == images[2] {
			return r
		}
	}
	panic("mesh: rotation set is not closed under composition")
}

func buildInverses() {
	for r := Rotation(0); r < RotationCount; r++ {
		found := false
		for c := Rotation(0); c < RotationCount; c++ {
			if composed[r][c] == IdentityRotation {
				inverses[r] = c
				found = true
				break
			}
		}
		if !found {
			panic(fmt.Sprintf("mesh: rotation %d has no inverse", r))
		}
	}
}

// Rotate applies r to p
func Rotate(p Point, r Rotation) Point {
	ra := &rotations[r]
	in := [3]int32{p.X, p.Y, p.Z}
	return Point{
		X: ra.sign[0] * in[ra.axis[0]],
		Y: ra.sign[1] * in[ra.axis[1]],
		Z: ra.sign[2] * in[ra.axis[2]],
	}
}

// Apply is Rotate(p, r)
func (r Rotation) Apply(p Point) Point {
	return Rotate(p, r)
}

// Inverse returns the rotation that undoes r
func (r Rotation) Inverse() Rotation {
	return inverses[r]
}

// Compose returns the single rotation equivalent to applying r1 then r2.
func Compose(r1, r2 Rotation) Rotation {
	return composed[r1][r2]
}

// Then is Compose(r, next)
func (r Rotation) Then(next Rotation) Rotation {
	return composed[r][next]
}

// Valid reports whether r indexes one of the 24 rotations
func (r Rotation) Valid() bool {
	return r < RotationCount
}

// Matrix returns the 3x3 integer matrix of r in row-major order.
func (r Rotation) Matrix() [3][3]int32 {
	var m [3][3]int32
	ra := &rotations[r]
	for i := 0; i < 3; i++ {
		m[i][ra.axis[i]] = ra.sign[i]
	}
	return m
}

func (r Rotation) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rotation(%d)", uint8(r))
	}
	names := [3]string{"x", "y", "z"}
	ra := &rotations[r]
	out := "("
	for i := 0; i < 3; i++ {
		if i > 0 {
			out += ","
		}
		if ra.sign[i] < 0 {
			out += "-"
		}
		out += names[ra.axis[i]]
	}
	return out + ")"
}

// AllRotations returns every rotation in index order.
func AllRotations() []Rotation {
	out := make([]Rotation, RotationCount)
	for i := range out {
		out[i] = Rotation(i)
	}
	return out
}
