package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physical/internal/physics"
)

func triangles() *physics.Mesh {
	return physics.NewMesh([]rl.Vector3{{X: 0}, {X: 1}, {Y: 1}}, physics.EmptyBox())
}

// newEngine registers meshes a at the origin, b overlapping it and c far off.
func newEngine(t *testing.T) *physics.Engine {
	t.Helper()
	e := physics.NewEngine()
	for name, x := range map[string]float32{"a": 0, "b": 0.5, "c": 10} {
		sid, err := e.AddShape(triangles())
		require.NoError(t, err)
		obj := physics.NewObject(name, sid)
		obj.Matrix = rl.MatrixTranslate(x, 0, 0)
		_, err = e.AddObject(obj)
		require.NoError(t, err)
	}
	return e
}

func position(t *testing.T, e *physics.Engine, name string) rl.Vector3 {
	t.Helper()
	id, ok := e.Find(name)
	require.True(t, ok)
	obj, _ := e.Object(id)
	return rl.Vector3{X: obj.Matrix.M12, Y: obj.Matrix.M13, Z: obj.Matrix.M14}
}

func TestHandleTranslate(t *testing.T) {
	e := newEngine(t)
	s := New(e)

	resp := s.Handle(Request{Op: OpTranslate, Object: "a", Delta: &[3]float32{0, 1, 0}})
	assert.Empty(t, resp.Error)
	assert.True(t, resp.Blocked)
	assert.Equal(t, []float32{0, 0, 0}, resp.Applied)
	require.Len(t, resp.Collisions, 1)
	assert.Equal(t, Collision{Object: "b", Path: "mesh-bounds"}, resp.Collisions[0])
	assert.Equal(t, rl.Vector3{}, position(t, e, "a"))

	resp = s.Handle(Request{Op: OpTranslate, Object: "c", Delta: &[3]float32{0, 2, 0}})
	assert.Empty(t, resp.Error)
	assert.False(t, resp.Blocked)
	assert.Equal(t, []float32{0, 2, 0}, resp.Applied)
	assert.Equal(t, rl.Vector3{X: 10, Y: 2}, position(t, e, "c"))
}

func TestHandleRotate(t *testing.T) {
	e := newEngine(t)
	s := New(e)

	resp := s.Handle(Request{Op: OpRotate, Object: "a", Axis: &[3]float32{0, 0, 1}, Angle: 0.3})
	assert.True(t, resp.Blocked)
	assert.Equal(t, []float32{0, 0, 0, 1}, resp.Applied)

	resp = s.Handle(Request{Op: OpRotate, Object: "c", Axis: &[3]float32{0, 0, 2}, Angle: 0.3})
	assert.Empty(t, resp.Error)
	assert.False(t, resp.Blocked)
	require.Len(t, resp.Applied, 4)
	assert.NotEqual(t, float32(1), resp.Applied[3])
	assert.InDelta(t, 10, position(t, e, "c").X, 1e-5)
}

func TestHandleErrors(t *testing.T) {
	s := New(newEngine(t))
	tests := []Request{
		{Op: "jump"},
		{Op: OpTranslate, Object: "a"},
		{Op: OpTranslate, Object: "ghost", Delta: &[3]float32{1, 0, 0}},
		{Op: OpRotate, Object: "a"},
		{Op: OpRotate, Object: "a", Axis: &[3]float32{}},
		{Op: OpPick},
	}
	for _, req := range tests {
		resp := s.Handle(req)
		assert.NotEmpty(t, resp.Error, "%+v", req)
		assert.Equal(t, req.Op, resp.Op)
	}
	resp := s.Handle(Request{Op: OpTranslate, Object: "ghost", Delta: &[3]float32{1, 0, 0}})
	assert.Contains(t, resp.Error, physics.ErrUnknownObject.Error())
}

func TestHandlePickAndList(t *testing.T) {
	e := newEngine(t)
	s := New(e)

	resp := s.Handle(Request{Op: OpPick, Origin: &[3]float32{10.2, 0.2, -5}, Dir: &[3]float32{0, 0, 1}})
	require.NotNil(t, resp.Pick)
	assert.Equal(t, "c", resp.Pick.Object)
	assert.InDelta(t, 5, resp.Pick.Distance, 1e-5)

	resp = s.Handle(Request{Op: OpPick, Origin: &[3]float32{50, 0, -5}, Dir: &[3]float32{0, 0, 1}})
	assert.Nil(t, resp.Pick)
	assert.Empty(t, resp.Error)

	resp = s.Handle(Request{Op: OpList})
	require.Len(t, resp.Objects, 3)
	for _, info := range resp.Objects {
		assert.Equal(t, "mesh", info.Kind)
		assert.Equal(t, "bound", info.Detail)
	}
}

func TestCustomCaller(t *testing.T) {
	calls := 0
	s := New(newEngine(t), WithCaller(func(f func()) {
		calls++
		f()
	}))
	s.Handle(Request{Op: OpList})
	s.Handle(Request{Op: OpTranslate, Object: "a", Delta: &[3]float32{1, 0, 0}})
	assert.Equal(t, 2, calls)
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readOp reads messages until one with the given op arrives.
func readOp(t *testing.T, conn *websocket.Conn, op string) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if msg["op"] == op {
			return msg
		}
	}
}

func TestWebsocket(t *testing.T) {
	e := newEngine(t)
	s := New(e)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	mover := dial(t, ts.URL)
	watcher := dial(t, ts.URL)

	require.NoError(t, mover.WriteJSON(Request{Op: OpList}))
	list := readOp(t, mover, OpList)
	assert.Len(t, list["objects"], 3)
	require.Eventually(t, func() bool { return s.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, mover.WriteJSON(Request{Op: OpTranslate, Object: "a", Delta: &[3]float32{0.1, 0, 0}}))
	reply := readOp(t, mover, OpTranslate)
	assert.Equal(t, true, reply["blocked"])
	assert.Equal(t, []any{0.0, 0.0, 0.0}, reply["applied"])

	ev := readOp(t, watcher, OpCollision)
	assert.Equal(t, "a", ev["mover"])
	assert.Equal(t, "b", ev["object"])
	assert.Equal(t, "mesh-bounds", ev["path"])
}

func TestWebsocketReadLimit(t *testing.T) {
	s := New(newEngine(t), WithReadLimit(64))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts.URL)
	require.NoError(t, conn.WriteJSON(Request{Op: OpList, Object: strings.Repeat("x", 256)}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]any
	assert.Error(t, conn.ReadJSON(&msg))
}

func TestBroadcastDoesNotBlockOnSlowClient(t *testing.T) {
	s := New(newEngine(t))
	slow := &client{send: make(chan any, 2), done: make(chan struct{})}
	s.clientsMu.Lock()
	s.clients[slow] = struct{}{}
	s.clientsMu.Unlock()

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 10; i++ {
			s.broadcast(Event{Op: OpCollision, Mover: "a", Object: "b"})
		}
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("broadcast blocked on a client that never drains")
	}
	assert.Len(t, slow.send, 2)

	// A blocked motion still answers while the slow client is stuck.
	resp := s.Handle(Request{Op: OpTranslate, Object: "a", Delta: &[3]float32{1, 0, 0}})
	assert.True(t, resp.Blocked)
}

func TestBoxObjectsCannotMove(t *testing.T) {
	e := newEngine(t)
	sid, err := e.AddShape(&physics.Box{Min: rl.Vector3{X: 20}, Max: rl.Vector3{X: 21, Y: 1, Z: 1}})
	require.NoError(t, err)
	_, err = e.AddObject(physics.NewObject("crate", sid))
	require.NoError(t, err)
	s := New(e)

	resp := s.Handle(Request{Op: OpTranslate, Object: "crate", Delta: &[3]float32{0, 1, 0}})
	assert.Contains(t, resp.Error, ErrStaticObject.Error())
	assert.Nil(t, resp.Applied)
	assert.Equal(t, rl.Vector3{}, position(t, e, "crate"))

	resp = s.Handle(Request{Op: OpRotate, Object: "crate", Axis: &[3]float32{0, 0, 1}, Angle: 0.5})
	assert.Contains(t, resp.Error, ErrStaticObject.Error())

	resp = s.Handle(Request{Op: OpPick, Origin: &[3]float32{20.5, 0.5, -5}, Dir: &[3]float32{0, 0, 1}})
	require.NotNil(t, resp.Pick)
	assert.Equal(t, "crate", resp.Pick.Object)
}
