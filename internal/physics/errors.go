package physics

import "github.com/pkg/errors"

var (
	// ErrInvalidShapeData is returned when a shape's buffers disagree with its
	// declared counts, or its geometry holds values no predicate can use.
	ErrInvalidShapeData = errors.New("invalid shape data")

	// ErrUnsupportedShapePair marks a dispatch with no predicate for the two
	// shape kinds. It is a diagnostic only; the pair is never a collision.
	ErrUnsupportedShapePair = errors.New("unsupported shape pair")

	// ErrDoubleRegistration is returned when a named object is registered twice.
	ErrDoubleRegistration = errors.New("object already registered")

	// ErrUnknownObject is returned for an ObjectID that is not, or no longer, live.
	ErrUnknownObject = errors.New("unknown object")

	// ErrUnknownShape is returned for a ShapeID the store has never issued.
	ErrUnknownShape = errors.New("unknown shape")
)
