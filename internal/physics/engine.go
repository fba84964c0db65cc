package physics

import (
	"log/slog"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type fieldSlot struct {
	field Field
	live  bool
}

type slot struct {
	obj  Object
	gen  uint32
	live bool
}

// Engine owns every registered shape, object and field and answers
// speculative motion tests with an all-pairs scan.
//
// Tests hold the read lock for the whole scan and never modify the registry,
// so any number may run at once; registration, removal and SetTransform take
// the write lock.
type Engine struct {
	mu       sync.RWMutex
	shapes   map[ShapeID]Shape
	shapeIDs map[Shape]ShapeID
	// refs counts the live objects using each shape.
	refs       map[ShapeID]int
	slots      []slot
	free       []uint32
	names      map[string]ObjectID
	fields     []fieldSlot
	freeFields []FieldID

	dispatcher Dispatcher
	probe      bool
	clock      Clock
	log        *slog.Logger

	// Collisions fires after a blocked test, once per counterpart.
	Collisions Event[CollisionEvent]
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithSphereMode(m SphereMode) Option {
	return func(e *Engine) { e.dispatcher.Detector.SphereMode = m }
}

// WithSymmetricPrimitive makes the both-Primitive mesh refinement test the
// triangles of both meshes instead of only the moving one's.
func WithSymmetricPrimitive(on bool) Option {
	return func(e *Engine) { e.dispatcher.Symmetric = on }
}

// WithProbeProposedPose tests the moving object at its current pose followed
// by the proposed delta rather than at its current pose.
func WithProbeProposedPose(on bool) Option {
	return func(e *Engine) { e.probe = on }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		shapes:   make(map[ShapeID]Shape),
		shapeIDs: make(map[Shape]ShapeID),
		refs:     make(map[ShapeID]int),
		names:    make(map[string]ObjectID),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dispatcher.Log = e.log
	return e
}

// AddShape validates and stores a shape. Adding the same shape value again
// returns the handle it already has. A shape is dropped from the store when
// the last object using it is removed.
func (e *Engine) AddShape(s Shape) (ShapeID, error) {
	if err := Validate(s); err != nil {
		return ShapeID{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if id, ok := e.shapeIDs[s]; ok {
		return id, nil
	}
	id := ShapeID(uuid.Must(uuid.NewV7()))
	e.shapes[id] = s
	e.shapeIDs[s] = id
	return id, nil
}

// Shape returns a stored shape.
func (e *Engine) Shape(id ShapeID) (Shape, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.shapes[id]
	return s, ok
}

// AddObject registers an object. Its shape must already be stored and a
// non-empty name must be unique among live objects.
func (e *Engine) AddObject(obj Object) (ObjectID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.shapes[obj.Shape]; !ok {
		return ObjectID{}, errors.Wrapf(ErrUnknownShape, "object %q shape %s", obj.Name, obj.Shape)
	}
	if obj.Name != "" {
		if _, dup := e.names[obj.Name]; dup {
			return ObjectID{}, errors.Wrapf(ErrDoubleRegistration, "object %q", obj.Name)
		}
	}

	var id ObjectID
	if n := len(e.free); n > 0 {
		idx := e.free[n-1]
		e.free = e.free[:n-1]
		s := &e.slots[idx]
		s.obj, s.live = obj, true
		id = ObjectID{index: idx, gen: s.gen}
	} else {
		e.slots = append(e.slots, slot{obj: obj, gen: 1, live: true})
		id = ObjectID{index: uint32(len(e.slots) - 1), gen: 1}
	}
	if obj.Name != "" {
		e.names[obj.Name] = id
	}
	e.refs[obj.Shape]++
	e.log.Debug("physics: object added", "id", id, "name", obj.Name,
		"kind", e.shapes[obj.Shape].Kind(), "detail", obj.Detail)
	return id, nil
}

// AddField registers a field. Fields are never consulted by tests.
func (e *Engine) AddField(f Field) FieldID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n := len(e.freeFields); n > 0 {
		id := e.freeFields[n-1]
		e.freeFields = e.freeFields[:n-1]
		e.fields[id] = fieldSlot{field: f, live: true}
		return id
	}
	e.fields = append(e.fields, fieldSlot{field: f, live: true})
	return FieldID(len(e.fields) - 1)
}

// RemoveField drops a field. Its ID may be handed out again by AddField.
func (e *Engine) RemoveField(id FieldID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id < 0 || int(id) >= len(e.fields) || !e.fields[id].live {
		return errors.Errorf("physics: unknown field %d", id)
	}
	e.fields[id] = fieldSlot{}
	e.freeFields = append(e.freeFields, id)
	return nil
}

// Fields returns the live fields in ID order.
func (e *Engine) Fields() []Field {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Field, 0, len(e.fields)-len(e.freeFields))
	for _, f := range e.fields {
		if f.live {
			out = append(out, f.field)
		}
	}
	return out
}

// RemoveObject tombstones the object's slot. The slot is reused by a later
// AddObject under a new generation, so stale IDs report ErrUnknownObject.
func (e *Engine) RemoveObject(id ObjectID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.slot(id)
	if err != nil {
		return err
	}
	if s.obj.Name != "" {
		delete(e.names, s.obj.Name)
	}
	e.refs[s.obj.Shape]--
	if e.refs[s.obj.Shape] <= 0 {
		delete(e.refs, s.obj.Shape)
		delete(e.shapeIDs, e.shapes[s.obj.Shape])
		delete(e.shapes, s.obj.Shape)
	}
	s.obj = Object{}
	s.live = false
	s.gen++
	e.free = append(e.free, id.index)
	e.log.Debug("physics: object removed", "id", id)
	return nil
}

// Object returns a copy of a live object.
func (e *Engine) Object(id ObjectID) (Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, err := e.slot(id)
	if err != nil {
		return Object{}, false
	}
	return s.obj, true
}

// Find looks a live object up by name.
func (e *Engine) Find(name string) (ObjectID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.names[name]
	return id, ok
}

// Entry pairs a live object with its ID.
type Entry struct {
	ID     ObjectID
	Object Object
}

// Objects returns every live object in slot order.
func (e *Engine) Objects() []Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Entry, 0, len(e.slots)-len(e.free))
	for i := range e.slots {
		s := &e.slots[i]
		if s.live {
			out = append(out, Entry{ID: ObjectID{index: uint32(i), gen: s.gen}, Object: s.obj})
		}
	}
	return out
}

// Len returns the number of live objects.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.slots) - len(e.free)
}

// SetTransform replaces an object's world pose. The presentation layer calls
// it after applying an accepted motion.
func (e *Engine) SetTransform(id ObjectID, m rl.Matrix) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.slot(id)
	if err != nil {
		return err
	}
	s.obj.Matrix = m
	return nil
}

// TestTranslation checks a proposed translation of id against every other
// object. When anything is hit the delta is zeroed in place. The object's own
// transform is left alone; the caller applies the returned delta.
func (e *Engine) TestTranslation(id ObjectID, delta *rl.Vector3) (TestResult, error) {
	if delta == nil {
		return TestResult{}, errors.New("physics: nil translation delta")
	}
	res, err := e.test(id, translation(*delta))
	if err != nil {
		return res, err
	}
	if res.Blocked() {
		*delta = rl.Vector3{}
	}
	return res, nil
}

// TestRotation is TestTranslation for a rotation delta, which is reset to the
// identity rotation when anything is hit.
func (e *Engine) TestRotation(id ObjectID, delta *rl.Quaternion) (TestResult, error) {
	if delta == nil {
		return TestResult{}, errors.New("physics: nil rotation delta")
	}
	res, err := e.test(id, rotation(*delta))
	if err != nil {
		return res, err
	}
	if res.Blocked() {
		*delta = rl.QuaternionIdentity()
	}
	return res, nil
}

func (e *Engine) test(id ObjectID, mo *motion) (TestResult, error) {
	var res TestResult

	e.mu.RLock()
	s, err := e.slot(id)
	if err != nil {
		e.mu.RUnlock()
		return res, err
	}
	name := s.obj.Name
	mover := body{id: id, obj: &s.obj, shape: e.shapes[s.obj.Shape]}
	if e.probe {
		mover.probe = mo
	}
	for i := range e.slots {
		other := &e.slots[i]
		if !other.live || uint32(i) == id.index {
			continue
		}
		e.dispatcher.Collide(mover, body{
			id:    ObjectID{index: uint32(i), gen: other.gen},
			obj:   &other.obj,
			shape: e.shapes[other.obj.Shape],
		}, &res)
	}
	e.mu.RUnlock()

	if res.Blocked() {
		e.log.Debug("physics: motion blocked", "object", name, "hits", len(res.Collisions))
		for _, info := range res.Collisions {
			e.Collisions.Invoke(CollisionEvent{Mover: id, Info: info})
		}
	}
	return res, nil
}

// slot resolves a live ID. Callers hold e.mu.
func (e *Engine) slot(id ObjectID) (*slot, error) {
	if int(id.index) >= len(e.slots) {
		return nil, errors.Wrapf(ErrUnknownObject, "id %s", id)
	}
	s := &e.slots[id.index]
	if !s.live || s.gen != id.gen {
		return nil, errors.Wrapf(ErrUnknownObject, "id %s", id)
	}
	return s, nil
}
