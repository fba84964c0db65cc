package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShapeKind tags the concrete variant behind a Shape.
type ShapeKind int

const (
	KindBox ShapeKind = iota
	KindSphere
	KindPoints
	KindMesh
	KindPlane
)

func (k ShapeKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	case KindPoints:
		return "points"
	case KindMesh:
		return "mesh"
	case KindPlane:
		return "plane"
	}
	return "unknown"
}

// Shape is a read-only geometric primitive used by the collision predicates.
// The set of implementations is closed: *Box, *Sphere, *Points, *Mesh and *Plane.
type Shape interface {
	Kind() ShapeKind
	sealed()
}

// Sphere stores a center and a radius.
type Sphere struct {
	Center rl.Vector3
	Radius float32
}

func (*Sphere) Kind() ShapeKind { return KindSphere }
func (*Sphere) sealed()         {}

// Points is an unordered point cloud. Vertices is held by reference; the caller
// keeps ownership of the buffer and must not mutate it after registration.
type Points struct {
	Bounds   Box
	Vertices []rl.Vector3
	Count    int
}

func (*Points) Kind() ShapeKind { return KindPoints }
func (*Points) sealed()         {}

// NewPoints wraps a vertex buffer, computing its bounds.
func NewPoints(vertices []rl.Vector3) *Points {
	return &Points{
		Bounds:   BoundsOf(vertices),
		Vertices: vertices,
		Count:    len(vertices),
	}
}

// Mesh is a triangle soup: every three consecutive vertices form a triangle
// unless Topology is set, in which case Topology indexes Vertices.
type Mesh struct {
	Points
	Topology []int32
}

func (*Mesh) Kind() ShapeKind { return KindMesh }
func (*Mesh) sealed()         {}

// NewMesh builds a mesh from a vertex buffer and its precomputed bounds.
// A bounds value that is still empty is recomputed from the vertices.
func NewMesh(vertices []rl.Vector3, bounds Box) *Mesh {
	if bounds.IsEmpty() {
		bounds = BoundsOf(vertices)
	}
	return &Mesh{Points: Points{Bounds: bounds, Vertices: vertices, Count: len(vertices)}}
}

// MeshFromFlat converts a flat xyz buffer, the layout the geometry layer hands
// over, into a mesh. Trailing values that do not form a full vertex are dropped.
func MeshFromFlat(flat []float32) *Mesh {
	vertices := make([]rl.Vector3, len(flat)/3)
	for i := range vertices {
		vertices[i] = rl.Vector3{X: flat[i*3], Y: flat[i*3+1], Z: flat[i*3+2]}
	}
	return NewMesh(vertices, EmptyBox())
}

// TriangleCount is the number of whole triangles in a topology-free mesh.
func (m *Mesh) TriangleCount() int {
	return m.Count / 3
}

// Plane stores a normal and a point on the plane. No predicate reads it yet.
type Plane struct {
	Normal rl.Vector3
	Point  rl.Vector3
}

func (*Plane) Kind() ShapeKind { return KindPlane }
func (*Plane) sealed()         {}

// worldBounds is the world-space AABB of a shape under the given transform,
// used by ray queries. Planes are unbounded and report false.
func worldBounds(s Shape, m rl.Matrix) (Box, bool) {
	switch s := s.(type) {
	case *Box:
		return *s, true
	case *Sphere:
		r := rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius}
		return Box{Min: rl.Vector3Subtract(s.Center, r), Max: rl.Vector3Add(s.Center, r)}, true
	case *Points:
		return s.Bounds.Transformed(m), true
	case *Mesh:
		return s.Bounds.Transformed(m), true
	}
	return Box{}, false
}
