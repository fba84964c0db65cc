package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// Validate checks a shape before it enters the store, so a malformed buffer is
// reported once at registration instead of corrupting every later query.
func Validate(s Shape) error {
	switch s := s.(type) {
	case *Box:
		if s == nil {
			return errors.Wrap(ErrInvalidShapeData, "nil box")
		}
		return validateBox("box", *s)
	case *Sphere:
		if s == nil {
			return errors.Wrap(ErrInvalidShapeData, "nil sphere")
		}
		if badVector(s.Center) || math32.IsNaN(s.Radius) || s.Radius < 0 {
			return errors.Wrapf(ErrInvalidShapeData, "sphere center %v radius %v", s.Center, s.Radius)
		}
		return nil
	case *Points:
		if s == nil {
			return errors.Wrap(ErrInvalidShapeData, "nil points")
		}
		return validatePoints("points", s)
	case *Mesh:
		if s == nil {
			return errors.Wrap(ErrInvalidShapeData, "nil mesh")
		}
		if err := validatePoints("mesh", &s.Points); err != nil {
			return err
		}
		for i, idx := range s.Topology {
			if idx < 0 || int(idx) >= s.Count {
				return errors.Wrapf(ErrInvalidShapeData, "mesh topology[%d] = %d outside %d vertices", i, idx, s.Count)
			}
		}
		return nil
	case *Plane:
		if s == nil {
			return errors.Wrap(ErrInvalidShapeData, "nil plane")
		}
		if badVector(s.Normal) || badVector(s.Point) {
			return errors.Wrap(ErrInvalidShapeData, "plane holds NaN")
		}
		return nil
	case nil:
		return errors.Wrap(ErrInvalidShapeData, "nil shape")
	}
	return errors.Wrapf(ErrInvalidShapeData, "unknown shape type %T", s)
}

func validatePoints(what string, p *Points) error {
	switch {
	case p.Count < 0:
		return errors.Wrapf(ErrInvalidShapeData, "%s count %d", what, p.Count)
	case p.Count > 0 && p.Vertices == nil:
		return errors.Wrapf(ErrInvalidShapeData, "%s has nil vertex buffer for %d points", what, p.Count)
	case len(p.Vertices) < p.Count:
		return errors.Wrapf(ErrInvalidShapeData, "%s has %d vertices for %d points", what, len(p.Vertices), p.Count)
	}
	for i, v := range p.Vertices[:p.Count] {
		if badVector(v) {
			return errors.Wrapf(ErrInvalidShapeData, "%s vertex %d is %v", what, i, v)
		}
	}
	if p.Bounds.IsEmpty() {
		// An empty cloud keeps the empty bounds; anything else needs real bounds.
		if p.Count > 0 {
			return errors.Wrapf(ErrInvalidShapeData, "%s bounds empty for %d points", what, p.Count)
		}
		return nil
	}
	return validateBox(what+" bounds", p.Bounds)
}

func validateBox(what string, b Box) error {
	if math32.IsNaN(b.Min.X) || math32.IsNaN(b.Min.Y) || math32.IsNaN(b.Min.Z) ||
		math32.IsNaN(b.Max.X) || math32.IsNaN(b.Max.Y) || math32.IsNaN(b.Max.Z) {
		return errors.Wrapf(ErrInvalidShapeData, "%s holds NaN", what)
	}
	return nil
}

func badVector(v rl.Vector3) bool {
	return math32.IsNaN(v.X) || math32.IsNaN(v.Y) || math32.IsNaN(v.Z) ||
		math32.IsInf(v.X, 0) || math32.IsInf(v.Y, 0) || math32.IsInf(v.Z, 0)
}
