// Package server exposes engine motion tests to an interaction layer over a
// websocket.
package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"physical/internal/physics"
)

const (
	// writeWait bounds one websocket write.
	writeWait = 2 * time.Second
	// sendBuffer is the number of messages queued per client before pushes
	// to it are dropped.
	sendBuffer = 64
)

// ErrStaticObject is returned for motion requests on Box objects. Boxes are
// stored in world space and compared as stored, so their pose cannot move them.
var ErrStaticObject = errors.New("object cannot be moved")

// Caller runs f on whatever goroutine owns the engine and returns once f has
// finished.
type Caller func(f func())

type Server struct {
	engine    *physics.Engine
	log       *slog.Logger
	readLimit int64
	call      Caller
	upgrader  websocket.Upgrader

	serial sync.Mutex

	clientsMu sync.RWMutex
	clients   map[*client]struct{}
}

// client owns one connection. Only its writer goroutine writes to conn, so a
// slow client never holds up the goroutine that produced a message.
type client struct {
	conn *websocket.Conn
	send chan any
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan any, sendBuffer), done: make(chan struct{})}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithReadLimit caps one inbound message in bytes.
func WithReadLimit(n int64) Option {
	return func(s *Server) { s.readLimit = n }
}

// WithCaller hands every test-then-apply sequence to call instead of running
// it under the server's own mutex.
func WithCaller(call Caller) Option {
	return func(s *Server) { s.call = call }
}

// New builds a server over e and subscribes it to e's collision events.
func New(e *physics.Engine, opts ...Option) *Server {
	s := &Server{
		engine:    e,
		log:       slog.Default(),
		readLimit: 4096,
		clients:   make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Local tooling connects from arbitrary origins
			},
		},
	}
	s.call = s.serialCall
	for _, opt := range opts {
		opt(s)
	}
	e.Collisions.AddListener(s.onCollision)
	return s
}

func (s *Server) serialCall(f func()) {
	s.serial.Lock()
	defer s.serial.Unlock()
	f()
}

// Handler routes /ws to the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	return mux
}

// ServeWS upgrades the request and answers messages until the client leaves.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("server: websocket upgrade", "err", err)
		return
	}
	conn.SetReadLimit(s.readLimit)

	c := newClient(conn)
	defer c.close()
	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
	}()
	go s.writeLoop(c)
	s.log.Debug("server: client connected", "remote", r.RemoteAddr)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("server: websocket read", "err", err)
			}
			return
		}
		resp := s.Handle(req)
		select {
		case c.send <- resp:
		case <-c.done:
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.close()
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				s.log.Warn("server: websocket write", "err", err)
				c.close()
				return
			}
		}
	}
}

// Handle answers one request. It is safe to call from any goroutine.
func (s *Server) Handle(req Request) Response {
	var (
		resp Response
		err  error
	)
	s.call(func() {
		switch req.Op {
		case OpTranslate:
			resp, err = s.translate(req)
		case OpRotate:
			resp, err = s.rotate(req)
		case OpPick:
			resp, err = s.pick(req)
		case OpList:
			resp = s.list()
		default:
			err = errors.Errorf("unknown op %q", req.Op)
		}
	})
	resp.Op = req.Op
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

func (s *Server) lookup(name string) (physics.ObjectID, physics.Object, error) {
	id, ok := s.engine.Find(name)
	if !ok {
		return id, physics.Object{}, errors.Wrapf(physics.ErrUnknownObject, "%q", name)
	}
	obj, ok := s.engine.Object(id)
	if !ok {
		return id, obj, errors.Wrapf(physics.ErrUnknownObject, "%q", name)
	}
	return id, obj, nil
}

// movable resolves an object that a motion request may move.
func (s *Server) movable(name string) (physics.ObjectID, physics.Object, error) {
	id, obj, err := s.lookup(name)
	if err != nil {
		return id, obj, err
	}
	if shape, ok := s.engine.Shape(obj.Shape); ok && shape.Kind() == physics.KindBox {
		return id, obj, errors.Wrapf(ErrStaticObject, "%q is a box", name)
	}
	return id, obj, nil
}

// translate tests the delta and, like the keyboard handler it stands in for,
// applies whatever delta survives.
func (s *Server) translate(req Request) (Response, error) {
	if req.Delta == nil {
		return Response{}, errors.New("translate needs delta")
	}
	id, obj, err := s.movable(req.Object)
	if err != nil {
		return Response{}, err
	}
	delta := vec(*req.Delta)
	res, err := s.engine.TestTranslation(id, &delta)
	if err != nil {
		return Response{}, err
	}
	if !res.Blocked() {
		if err := s.engine.SetTransform(id, physics.Translate(obj.Matrix, delta)); err != nil {
			return Response{}, err
		}
	}
	resp := report(res)
	resp.Object = req.Object
	resp.Applied = []float32{delta.X, delta.Y, delta.Z}
	return resp, nil
}

func (s *Server) rotate(req Request) (Response, error) {
	if req.Axis == nil {
		return Response{}, errors.New("rotate needs axis")
	}
	axis := vec(*req.Axis)
	if rl.Vector3LengthSqr(axis) == 0 {
		return Response{}, errors.New("rotate axis is zero")
	}
	id, obj, err := s.movable(req.Object)
	if err != nil {
		return Response{}, err
	}
	q := rl.QuaternionFromAxisAngle(rl.Vector3Normalize(axis), req.Angle)
	res, err := s.engine.TestRotation(id, &q)
	if err != nil {
		return Response{}, err
	}
	if !res.Blocked() {
		if err := s.engine.SetTransform(id, physics.Rotate(obj.Matrix, q)); err != nil {
			return Response{}, err
		}
	}
	resp := report(res)
	resp.Object = req.Object
	resp.Applied = []float32{q.X, q.Y, q.Z, q.W}
	return resp, nil
}

func (s *Server) pick(req Request) (Response, error) {
	if req.Origin == nil || req.Dir == nil {
		return Response{}, errors.New("pick needs origin and dir")
	}
	maxDist := req.Max
	if maxDist <= 0 {
		maxDist = 1000
	}
	hit, ok := s.engine.Raycast(vec(*req.Origin), vec(*req.Dir), maxDist)
	if !ok {
		return Response{}, nil
	}
	return Response{Pick: &Pick{
		Object:   hit.Name,
		Point:    [3]float32{hit.Point.X, hit.Point.Y, hit.Point.Z},
		Normal:   [3]float32{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance: hit.Distance,
	}}, nil
}

func (s *Server) list() Response {
	var resp Response
	for _, entry := range s.engine.Objects() {
		info := ObjectInfo{
			ID:       entry.ID.String(),
			Name:     entry.Object.Name,
			Detail:   entry.Object.Detail.String(),
			Position: [3]float32{entry.Object.Matrix.M12, entry.Object.Matrix.M13, entry.Object.Matrix.M14},
		}
		if shape, ok := s.engine.Shape(entry.Object.Shape); ok {
			info.Kind = shape.Kind().String()
		}
		resp.Objects = append(resp.Objects, info)
	}
	return resp
}

func report(res physics.TestResult) Response {
	resp := Response{Blocked: res.Blocked()}
	for _, c := range res.Collisions {
		resp.Collisions = append(resp.Collisions, Collision{Object: c.Name, Path: c.Path.String()})
	}
	for _, u := range res.Unsupported {
		resp.Unsupported = append(resp.Unsupported, u.Name)
	}
	return resp
}

// onCollision pushes a blocked motion to every connected client.
func (s *Server) onCollision(ev physics.CollisionEvent) {
	mover := ev.Mover.String()
	if obj, ok := s.engine.Object(ev.Mover); ok && obj.Name != "" {
		mover = obj.Name
	}
	s.broadcast(Event{Op: OpCollision, Mover: mover, Object: ev.Info.Name, Path: ev.Info.Path.String()})
}

// broadcast queues v for every client without blocking; a client whose queue
// is full misses the message.
func (s *Server) broadcast(v any) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- v:
		default:
			s.log.Debug("server: push dropped, client queue full")
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func vec(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}
