package scene

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"

	"physical/internal/physics"
	"physical/internal/tessellate"
)

// Loader registers scene files with an engine and remembers what it added,
// so a reload replaces the previous scene instead of stacking on it.
type Loader struct {
	Engine *physics.Engine
	// Cells is the tessellation resolution for solids.
	Cells int
	// Detail applies to objects that name no detail level.
	Detail physics.DetailLevel
	Log    *slog.Logger

	loaded []physics.ObjectID
	fields []physics.FieldID
}

func NewLoader(e *physics.Engine, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{Engine: e, Cells: tessellate.DefaultCells, Log: log}
}

// Loaded returns the IDs registered by the last successful Load.
func (l *Loader) Loaded() []physics.ObjectID {
	return append([]physics.ObjectID(nil), l.loaded...)
}

// LoadFile reads path and replaces the current scene with it.
func (l *Loader) LoadFile(path string) error {
	sf, err := Read(path)
	if err != nil {
		return err
	}
	if err := l.Load(sf); err != nil {
		return errors.Wrapf(err, "scene %s", path)
	}
	l.Log.Info("scene: loaded", "path", path, "objects", len(l.loaded))
	return nil
}

// Load builds every object of sf first and only then swaps the engine's
// contents, so a scene with a bad object leaves the previous scene in place.
func (l *Loader) Load(sf *SceneFile) error {
	objs := make([]physics.Object, 0, len(sf.Objects))
	shapes := make([]physics.Shape, 0, len(sf.Objects))
	firstMesh := sf.FirstMeshPrimitive
	names := make(map[string]bool, len(sf.Objects))
	for i, def := range sf.Objects {
		if def.Name != "" {
			if names[def.Name] {
				return errors.Wrapf(physics.ErrDoubleRegistration, "object %d %q", i, def.Name)
			}
			names[def.Name] = true
		}
		shape, err := l.buildShape(def)
		if err != nil {
			return errors.Wrapf(err, "object %d %q", i, def.Name)
		}
		if err := physics.Validate(shape); err != nil {
			return errors.Wrapf(err, "object %d %q", i, def.Name)
		}
		obj := physics.NewObject(def.Name, physics.ShapeID{})
		obj.Matrix = def.matrix()
		if def.Quality > 0 {
			obj.Quality = def.Quality
		}
		obj.Detail = l.Detail
		if def.Detail != "" {
			if obj.Detail, err = physics.ParseDetailLevel(def.Detail); err != nil {
				return errors.Wrapf(err, "object %d %q", i, def.Name)
			}
		}
		if shape.Kind() == physics.KindMesh && firstMesh {
			if def.Detail == "" {
				obj.Detail = physics.DetailPrimitive
			}
			firstMesh = false
		}
		objs = append(objs, obj)
		shapes = append(shapes, shape)
	}

	if err := l.checkNames(names); err != nil {
		return err
	}

	l.Clear()
	for _, name := range sf.Fields {
		l.fields = append(l.fields, l.Engine.AddField(physics.Field{Name: name}))
	}
	for i := range objs {
		sid, err := l.Engine.AddShape(shapes[i])
		if err != nil {
			return err
		}
		objs[i].Shape = sid
		id, err := l.Engine.AddObject(objs[i])
		if err != nil {
			return err
		}
		l.loaded = append(l.loaded, id)
	}
	return nil
}

// checkNames rejects names held by live objects the loader does not own, so
// the swap below cannot fail halfway.
func (l *Loader) checkNames(names map[string]bool) error {
	owned := make(map[physics.ObjectID]bool, len(l.loaded))
	for _, id := range l.loaded {
		owned[id] = true
	}
	for name := range names {
		if id, ok := l.Engine.Find(name); ok && !owned[id] {
			return errors.Wrapf(physics.ErrDoubleRegistration, "object %q is registered outside the scene", name)
		}
	}
	return nil
}

// Clear removes every object and field the loader registered.
func (l *Loader) Clear() {
	for _, id := range l.loaded {
		if err := l.Engine.RemoveObject(id); err != nil {
			l.Log.Debug("scene: object already gone", "id", id, "err", err)
		}
	}
	for _, id := range l.fields {
		if err := l.Engine.RemoveField(id); err != nil {
			l.Log.Debug("scene: field already gone", "id", id, "err", err)
		}
	}
	l.loaded = l.loaded[:0]
	l.fields = l.fields[:0]
}

func (l *Loader) buildShape(def ObjectDef) (physics.Shape, error) {
	s := def.Shape
	pos := vec3(def.Position)
	switch s.Type {
	case "box":
		// Boxes are compared as stored, so they are placed in world space here.
		return ptr(physics.NewBoxFromCenter(pos, vec3(s.Size))), nil
	case "sphere":
		return &physics.Sphere{Center: pos, Radius: s.Radius}, nil
	case "points":
		if len(s.Vertices)%3 != 0 {
			return nil, errors.Errorf("points buffer of %d floats is not xyz", len(s.Vertices))
		}
		m := physics.MeshFromFlat(s.Vertices)
		return &m.Points, nil
	case "mesh":
		if len(s.Vertices)%3 != 0 {
			return nil, errors.Errorf("mesh buffer of %d floats is not xyz", len(s.Vertices))
		}
		m := physics.MeshFromFlat(s.Vertices)
		m.Topology = s.Topology
		return m, nil
	case "solid":
		if s.Solid == nil {
			return nil, errors.New("solid shape without solid")
		}
		return tessellate.Mesh(*s.Solid, l.Cells)
	case "plane":
		return &physics.Plane{Normal: vec3(s.Normal), Point: pos}, nil
	}
	return nil, errors.Errorf("unknown shape type %q", s.Type)
}

// matrix composes scale, rotation and translation in that order.
func (def ObjectDef) matrix() rl.Matrix {
	scale := def.Scale
	if scale == [3]float32{} {
		scale = [3]float32{1, 1, 1}
	}
	scaleMatrix := rl.MatrixScale(scale[0], scale[1], scale[2])
	rotX := rl.MatrixRotateX(def.Rotation[0] * rl.Deg2rad)
	rotY := rl.MatrixRotateY(def.Rotation[1] * rl.Deg2rad)
	rotZ := rl.MatrixRotateZ(def.Rotation[2] * rl.Deg2rad)
	rotMatrix := rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)
	transMatrix := rl.MatrixTranslate(def.Position[0], def.Position[1], def.Position[2])
	return rl.MatrixMultiply(rl.MatrixMultiply(scaleMatrix, rotMatrix), transMatrix)
}

func vec3(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

func ptr[T any](v T) *T { return &v }
