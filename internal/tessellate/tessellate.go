// Package tessellate turns solid primitives into triangle-soup meshes the
// collision engine can register.
package tessellate

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"

	"physical/internal/physics"
)

// DefaultCells is the marching cubes resolution used when none is given.
const DefaultCells = 32

// Solid describes a primitive centered on the origin.
type Solid struct {
	// Kind is "box", "sphere" or "cylinder".
	Kind string `json:"kind" yaml:"kind"`
	// Size is the box extent along each axis.
	Size [3]float64 `json:"size,omitempty" yaml:"size,omitempty"`
	// Radius of a sphere or cylinder.
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	// Height of a cylinder, along Z.
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
	// Round is the edge rounding radius of a box or cylinder.
	Round float64 `json:"round,omitempty" yaml:"round,omitempty"`
}

// SDF builds the signed distance function for s.
func (s Solid) SDF() (sdf.SDF3, error) {
	var (
		out sdf.SDF3
		err error
	)
	switch s.Kind {
	case "box":
		if s.Size[0] <= 0 || s.Size[1] <= 0 || s.Size[2] <= 0 {
			return nil, errors.Errorf("box size %v must be positive", s.Size)
		}
		out, err = sdf.Box3D(v3.Vec{X: s.Size[0], Y: s.Size[1], Z: s.Size[2]}, s.Round)
	case "sphere":
		if s.Radius <= 0 {
			return nil, errors.Errorf("sphere radius %v must be positive", s.Radius)
		}
		out, err = sdf.Sphere3D(s.Radius)
	case "cylinder":
		if s.Radius <= 0 || s.Height <= 0 {
			return nil, errors.Errorf("cylinder radius %v height %v must be positive", s.Radius, s.Height)
		}
		out, err = sdf.Cylinder3D(s.Height, s.Radius, s.Round)
	default:
		return nil, errors.Errorf("unknown solid kind %q", s.Kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s", s.Kind)
	}
	return out, nil
}

// Flat tessellates s with marching cubes into a flat xyz vertex buffer, three
// vertices per triangle.
func Flat(s sdf.SDF3, cells int) []float32 {
	if cells <= 0 {
		cells = DefaultCells
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	vertices := make([]float32, 0, len(triangles)*9)
	for _, tri := range triangles {
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
		}
	}
	return vertices
}

// Bounds converts the solid's own bounding box, which the mesh keeps as its
// precomputed shape-local bounds.
func Bounds(s sdf.SDF3) physics.Box {
	bb := s.BoundingBox()
	return physics.Box{
		Min: rl.Vector3{X: float32(bb.Min.X), Y: float32(bb.Min.Y), Z: float32(bb.Min.Z)},
		Max: rl.Vector3{X: float32(bb.Max.X), Y: float32(bb.Max.Y), Z: float32(bb.Max.Z)},
	}
}

// Mesh tessellates a solid into a physics mesh bounded by the solid's box.
func Mesh(s Solid, cells int) (*physics.Mesh, error) {
	f, err := s.SDF()
	if err != nil {
		return nil, err
	}
	flat := Flat(f, cells)
	if len(flat) == 0 {
		return nil, errors.Errorf("%s produced no triangles at %d cells", s.Kind, cells)
	}
	m := physics.MeshFromFlat(flat)
	m.Bounds = Bounds(f)
	return m, nil
}
