package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// SphereMode selects the sphere overlap formula.
type SphereMode int

const (
	// SphereExact compares squared center distance to the squared radius sum.
	SphereExact SphereMode = iota
	// SphereLegacy compares squared center distance to the unsquared radius
	// sum. It under-detects for radius sums above 1 and exists so content
	// tuned against that behavior keeps its verdicts.
	SphereLegacy
)

func (m SphereMode) String() string {
	if m == SphereLegacy {
		return "legacy"
	}
	return "exact"
}

// Detector holds the pairwise intersection predicates. It carries only its
// configuration; every method is pure and never mutates its arguments.
type Detector struct {
	SphereMode SphereMode
}

// BoxBox reports overlap unless the boxes are separated along some axis.
// Touching faces count as overlap.
func (d Detector) BoxBox(a, b Box) bool {
	if a.Max.X < b.Min.X || a.Min.X > b.Max.X {
		return false
	}
	if a.Max.Y < b.Min.Y || a.Min.Y > b.Max.Y {
		return false
	}
	if a.Max.Z < b.Min.Z || a.Min.Z > b.Max.Z {
		return false
	}
	return true
}

func (d Detector) SphereSphere(a, b Sphere) bool {
	dist2 := rl.Vector3LengthSqr(rl.Vector3Subtract(a.Center, b.Center))
	sum := a.Radius + b.Radius
	if d.SphereMode == SphereLegacy {
		return dist2 <= sum
	}
	return dist2 <= sum*sum
}

// BoxSphere tests the sphere bounding the box against s. A miss is final; no
// tighter box-vs-sphere check follows.
func (d Detector) BoxSphere(b Box, s Sphere) bool {
	return d.SphereSphere(b.Sphere(), s)
}

// MeshMesh compares the meshes' precomputed shape-local bounds and never
// touches triangle data.
func (d Detector) MeshMesh(a, b *Mesh) bool {
	return d.BoxBox(a.Bounds, b.Bounds)
}

// MeshBox reports whether any triangle's own AABB overlaps b. Vertices are used
// as stored, so the mesh and the box must share a coordinate frame. Meshes with
// topology are not handled and report false.
func (d Detector) MeshBox(m *Mesh, b Box) bool {
	if len(m.Topology) > 0 {
		return false
	}
	faces := m.TriangleCount()
	for i := 0; i < faces; i++ {
		tri := m.Vertices[i*3 : i*3+3]
		triBox := EmptyBox().Expand(tri[0]).Expand(tri[1]).Expand(tri[2])
		if d.BoxBox(triBox, b) {
			return true
		}
	}
	return false
}
