package physics

// PredicatePath names the predicate route that produced a verdict.
type PredicatePath int

const (
	PathBoxBox PredicatePath = iota
	// PathMeshBounds accepts the world-box overlap of two Bound meshes.
	PathMeshBounds
	// PathMeshPrimitive tests the moving object's triangles against the other
	// object's world box.
	PathMeshPrimitive
	// PathMeshPrimitiveOther tests the other object's triangles against the
	// moving object's world box.
	PathMeshPrimitiveOther
)

func (p PredicatePath) String() string {
	switch p {
	case PathBoxBox:
		return "box-box"
	case PathMeshBounds:
		return "mesh-bounds"
	case PathMeshPrimitive:
		return "mesh-primitive"
	case PathMeshPrimitiveOther:
		return "mesh-primitive-other"
	}
	return "unknown"
}

// CollideInfo reports one object that was hit and how the hit was found.
type CollideInfo struct {
	Object ObjectID
	Name   string
	Path   PredicatePath
}

// UnsupportedPair records a counterpart that was skipped because no predicate
// exists for the two shape kinds. It never blocks a motion.
type UnsupportedPair struct {
	Object ObjectID
	Name   string
	Kinds  [2]ShapeKind
}

// TestResult aggregates one speculative motion test.
type TestResult struct {
	Collisions  []CollideInfo
	Unsupported []UnsupportedPair
}

// Blocked reports whether the proposed motion was rejected.
func (r TestResult) Blocked() bool {
	return len(r.Collisions) > 0
}

// Hit reports whether id is among the collisions.
func (r TestResult) Hit(id ObjectID) bool {
	for _, c := range r.Collisions {
		if c.Object == id {
			return true
		}
	}
	return false
}
