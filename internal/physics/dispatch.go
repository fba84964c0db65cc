package physics

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// motion is a proposed rigid motion: rotate about a pivot, then translate.
type motion struct {
	translate rl.Vector3
	rotate    rl.Quaternion
}

func translation(d rl.Vector3) *motion {
	return &motion{translate: d, rotate: rl.QuaternionIdentity()}
}

func rotation(q rl.Quaternion) *motion {
	return &motion{rotate: q}
}

// around returns the world-space matrix of the motion pivoting on p.
func (mo *motion) around(p rl.Vector3) rl.Matrix {
	m := rl.MatrixTranslate(-p.X, -p.Y, -p.Z)
	m = rl.MatrixMultiply(m, rl.QuaternionToMatrix(mo.rotate))
	m = rl.MatrixMultiply(m, rl.MatrixTranslate(p.X+mo.translate.X, p.Y+mo.translate.Y, p.Z+mo.translate.Z))
	return m
}

// apply moves the pose m by the motion, pivoting on m's own origin.
func (mo *motion) apply(m rl.Matrix) rl.Matrix {
	origin := rl.Vector3{X: m.M12, Y: m.M13, Z: m.M14}
	return rl.MatrixMultiply(m, mo.around(origin))
}

// Translate returns the pose m moved by d. Callers use it to apply a
// translation that TestTranslation accepted.
func Translate(m rl.Matrix, d rl.Vector3) rl.Matrix {
	return translation(d).apply(m)
}

// Rotate returns the pose m turned by q about its own origin.
func Rotate(m rl.Matrix, q rl.Quaternion) rl.Matrix {
	return rotation(q).apply(m)
}

// body is an object resolved for one dispatch.
type body struct {
	id    ObjectID
	obj   *Object
	shape Shape
	// probe, when set, moves the body to its proposed pose for the test.
	probe *motion
}

func (b body) pose() rl.Matrix {
	if b.probe == nil {
		return b.obj.Matrix
	}
	return b.probe.apply(b.obj.Matrix)
}

// box returns the raw world box of a Box-shaped body.
func (b body) box() Box {
	box := *b.shape.(*Box)
	if b.probe != nil {
		box = box.Transformed(b.probe.around(box.Center()))
	}
	return box
}

type kindPair struct {
	a, b ShapeKind
}

// Dispatcher picks the predicate for two objects from their shape kinds and
// detail levels and records hits.
type Dispatcher struct {
	Detector Detector
	// Symmetric extends the both-Primitive mesh refinement to test the other
	// object's triangles as well.
	Symmetric bool
	Log       *slog.Logger
}

// Collide runs a against other and appends at most one CollideInfo for other.
// The caller guarantees a and other are different objects.
func (d Dispatcher) Collide(a, other body, res *TestResult) {
	switch (kindPair{a.shape.Kind(), other.shape.Kind()}) {
	case kindPair{KindBox, KindBox}:
		if d.Detector.BoxBox(a.box(), other.box()) {
			record(res, other, PathBoxBox)
		}
	case kindPair{KindMesh, KindMesh}:
		if path, hit := d.meshMesh(a, other); hit {
			record(res, other, path)
		}
	default:
		res.Unsupported = append(res.Unsupported, UnsupportedPair{
			Object: other.id,
			Name:   other.obj.Name,
			Kinds:  [2]ShapeKind{a.shape.Kind(), other.shape.Kind()},
		})
		if d.Log != nil {
			d.Log.Debug("physics: pair skipped",
				"err", ErrUnsupportedShapePair,
				"object", a.obj.Name, "kind", a.shape.Kind(),
				"other", other.obj.Name, "otherKind", other.shape.Kind())
		}
	}
}

func (d Dispatcher) meshMesh(a, other body) (PredicatePath, bool) {
	meshA := a.shape.(*Mesh)
	meshB := other.shape.(*Mesh)
	boxA := meshA.Bounds.Transformed(a.pose())
	boxB := meshB.Bounds.Transformed(other.pose())
	if !d.Detector.BoxBox(boxA, boxB) {
		return 0, false
	}

	primA := a.obj.Detail == DetailPrimitive
	primB := other.obj.Detail == DetailPrimitive
	switch {
	case primA && primB:
		if d.Detector.MeshBox(meshA, boxB) {
			return PathMeshPrimitive, true
		}
		if d.Symmetric && d.Detector.MeshBox(meshB, boxA) {
			return PathMeshPrimitiveOther, true
		}
		return 0, false
	case primA:
		return PathMeshPrimitive, d.Detector.MeshBox(meshA, boxB)
	case primB:
		return PathMeshPrimitiveOther, d.Detector.MeshBox(meshB, boxA)
	}
	return PathMeshBounds, true
}

func record(res *TestResult, other body, path PredicatePath) {
	res.Collisions = append(res.Collisions, CollideInfo{
		Object: other.id,
		Name:   other.obj.Name,
		Path:   path,
	})
}
