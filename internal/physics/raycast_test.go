package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaycastNearest(t *testing.T) {
	e := NewEngine()
	addBox(t, e, "far", box(9, -1, -1, 10, 1, 1))
	near := addBox(t, e, "near", box(4, -1, -1, 5, 1, 1))

	hit, ok := e.Raycast(vec(0, 0, 0), vec(1, 0, 0), 100)
	require.True(t, ok)
	assert.Equal(t, near, hit.Object)
	assert.Equal(t, "near", hit.Name)
	assert.InDelta(t, 4, hit.Distance, 1e-5)
	assert.Equal(t, rl.Vector3{X: -1}, hit.Normal)
}

func TestRaycastMaxDistance(t *testing.T) {
	e := NewEngine()
	addBox(t, e, "a", box(4, -1, -1, 5, 1, 1))

	_, ok := e.Raycast(vec(0, 0, 0), vec(1, 0, 0), 3)
	assert.False(t, ok)
	_, ok = e.Raycast(vec(0, 0, 0), vec(-1, 0, 0), 100)
	assert.False(t, ok)
	_, ok = e.Raycast(vec(0, 0, 0), vec(0, 0, 0), 100)
	assert.False(t, ok)
}

func TestRaycastSphere(t *testing.T) {
	e := NewEngine()
	sid, err := e.AddShape(&Sphere{Center: vec(0, 10, 0), Radius: 2})
	require.NoError(t, err)
	id, err := e.AddObject(NewObject("ball", sid))
	require.NoError(t, err)

	hit, ok := e.Raycast(vec(0, 0, 0), vec(0, 1, 0), 100)
	require.True(t, ok)
	assert.Equal(t, id, hit.Object)
	assert.InDelta(t, 8, hit.Distance, 1e-4)
	assert.InDelta(t, -1, hit.Normal.Y, 1e-4)

	_, ok = e.Raycast(vec(5, 0, 0), vec(0, 1, 0), 100)
	assert.False(t, ok)
}

func TestRaycastMeshUsesWorldBounds(t *testing.T) {
	e := NewEngine()
	m := addMesh(t, e, "m", unitTriangles(), rl.MatrixTranslate(0, 0, 5), DetailBound)
	sid, err := e.AddShape(&Plane{Normal: vec(0, 0, 1)})
	require.NoError(t, err)
	_, err = e.AddObject(NewObject("ground", sid))
	require.NoError(t, err)

	hit, ok := e.Raycast(vec(0.5, 0.5, 0), vec(0, 0, 1), 100)
	require.True(t, ok)
	assert.Equal(t, m, hit.Object)
	assert.InDelta(t, 5, hit.Distance, 1e-5)
}

func TestRaycastSkipsRemoved(t *testing.T) {
	e := NewEngine()
	a := addBox(t, e, "a", box(4, -1, -1, 5, 1, 1))
	require.NoError(t, e.RemoveObject(a))

	_, ok := e.Raycast(vec(0, 0, 0), vec(1, 0, 0), 100)
	assert.False(t, ok)
}
