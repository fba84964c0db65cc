package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Box is an axis-aligned box given by its min and max corners.
type Box struct {
	Min rl.Vector3
	Max rl.Vector3
}

func (*Box) Kind() ShapeKind { return KindBox }
func (*Box) sealed()         {}

// EmptyBox returns a box with Min = +Inf and Max = -Inf on every axis, the
// identity for Expand.
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{
		Min: rl.Vector3{X: inf, Y: inf, Z: inf},
		Max: rl.Vector3{X: -inf, Y: -inf, Z: -inf},
	}
}

// NewBoxFromCenter creates a box from a center point and full size dimensions.
func NewBoxFromCenter(center, size rl.Vector3) Box {
	half := rl.Vector3{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2}
	return Box{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

// BoundsOf returns the smallest box holding every vertex.
func BoundsOf(vertices []rl.Vector3) Box {
	b := EmptyBox()
	for _, v := range vertices {
		b = b.Expand(v)
	}
	return b
}

// IsEmpty reports whether the box is inverted on any axis.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Expand returns the union of the box and a point.
func (b Box) Expand(p rl.Vector3) Box {
	return Box{Min: rl.Vector3Min(b.Min, p), Max: rl.Vector3Max(b.Max, p)}
}

func (b Box) Center() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(b.Min, b.Max), 0.5)
}

// Sphere derives the sphere bounding the box: centered on the midpoint with a
// radius of half the diagonal.
func (b Box) Sphere() Sphere {
	half := rl.Vector3Scale(rl.Vector3Subtract(b.Max, b.Min), 0.5)
	return Sphere{Center: b.Center(), Radius: rl.Vector3Length(half)}
}

// Translated returns the box moved by d.
func (b Box) Translated(d rl.Vector3) Box {
	return Box{Min: rl.Vector3Add(b.Min, d), Max: rl.Vector3Add(b.Max, d)}
}

// Transformed returns the world-space AABB enclosing the eight corners of the
// box after transformation by m. An empty box stays empty.
func (b Box) Transformed(m rl.Matrix) Box {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		corner := b.Min
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		out = out.Expand(rl.Vector3Transform(corner, m))
	}
	return out
}
