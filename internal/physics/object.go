package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DetailLevel chooses how faithfully an object's shape takes part in
// collision tests.
type DetailLevel int

const (
	// DetailBound treats the object as its shape's bounding box.
	DetailBound DetailLevel = iota
	// DetailPrimitive uses the true geometry where a predicate supports it.
	DetailPrimitive
)

func (l DetailLevel) String() string {
	if l == DetailPrimitive {
		return "primitive"
	}
	return "bound"
}

// ParseDetailLevel accepts the names produced by String.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch s {
	case "", "bound":
		return DetailBound, nil
	case "primitive":
		return DetailPrimitive, nil
	}
	return DetailBound, errors.Errorf("unknown detail level %q", s)
}

// ShapeID is the handle a registered shape is stored under.
type ShapeID uuid.UUID

func (id ShapeID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the handle was never issued.
func (id ShapeID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ObjectID addresses an arena slot. The generation changes every time the
// slot is vacated, so an ID kept past RemoveObject stops resolving.
type ObjectID struct {
	index uint32
	gen   uint32
}

func (id ObjectID) Index() int { return int(id.index) }

func (id ObjectID) IsZero() bool { return id.gen == 0 }

func (id ObjectID) String() string { return fmt.Sprintf("#%d.%d", id.index, id.gen) }

// Object is a rigid body: a shape, a mass, a world pose and a detail level.
type Object struct {
	Name    string
	Shape   ShapeID
	Quality float32
	// Matrix is the authoritative world pose. The engine reads it but only the
	// presentation layer changes it, through SetTransform.
	Matrix rl.Matrix
	Detail DetailLevel
}

// NewObject returns an object with unit quality, identity pose and Bound detail.
func NewObject(name string, shape ShapeID) Object {
	return Object{
		Name:    name,
		Shape:   shape,
		Quality: 1.0,
		Matrix:  rl.MatrixIdentity(),
		Detail:  DetailBound,
	}
}

// Field is a registrable environmental influence. Nothing reads it yet.
type Field struct {
	Name string
}

// FieldID indexes the field registry.
type FieldID int
