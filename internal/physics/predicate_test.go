package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func vec(x, y, z float32) rl.Vector3 { return rl.Vector3{X: x, Y: y, Z: z} }

func box(minX, minY, minZ, maxX, maxY, maxZ float32) Box {
	return Box{Min: vec(minX, minY, minZ), Max: vec(maxX, maxY, maxZ)}
}

func TestBoxBoxSeparated(t *testing.T) {
	unit := box(0, 0, 0, 1, 1, 1)
	tests := []struct {
		name  string
		other Box
	}{
		{"separated on +X", box(2, 0, 0, 3, 1, 1)},
		{"separated on -X", box(-2, 0, 0, -1, 1, 1)},
		{"separated on +Y", box(0, 2, 0, 1, 3, 1)},
		{"separated on -Y", box(0, -2, 0, 1, -1, 1)},
		{"separated on +Z", box(0, 0, 2, 1, 1, 3)},
		{"separated on -Z", box(0, 0, -2, 1, 1, -1)},
		{"separated on one axis only", box(0.5, 0.5, 1.01, 2, 2, 2)},
	}
	var d Detector
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, d.BoxBox(unit, tt.other))
			assert.False(t, d.BoxBox(tt.other, unit))
		})
	}
}

func TestBoxBoxOverlapping(t *testing.T) {
	unit := box(0, 0, 0, 1, 1, 1)
	tests := []struct {
		name  string
		other Box
	}{
		{"partial overlap", box(0.5, 0.5, 0.5, 2, 2, 2)},
		{"contained", box(0.25, 0.25, 0.25, 0.75, 0.75, 0.75)},
		{"containing", box(-1, -1, -1, 2, 2, 2)},
		{"identical", unit},
		{"touching face", box(1, 0, 0, 2, 1, 1)},
		{"touching edge", box(1, 1, 0, 2, 2, 1)},
		{"touching corner", box(1, 1, 1, 2, 2, 2)},
	}
	var d Detector
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, d.BoxBox(unit, tt.other))
			assert.True(t, d.BoxBox(tt.other, unit))
		})
	}
}

func TestBoxBoxEmptyNeverOverlaps(t *testing.T) {
	var d Detector
	assert.False(t, d.BoxBox(EmptyBox(), box(-100, -100, -100, 100, 100, 100)))
}

func TestSphereSphereSymmetric(t *testing.T) {
	spheres := []Sphere{
		{Center: vec(0, 0, 0), Radius: 1},
		{Center: vec(1.5, 0, 0), Radius: 1},
		{Center: vec(3, 0, 0), Radius: 0.5},
		{Center: vec(0, 4, 0), Radius: 2},
		{Center: vec(-1, -1, -1), Radius: 0.1},
		{Center: vec(10, 10, 10), Radius: 0},
	}
	for _, mode := range []SphereMode{SphereExact, SphereLegacy} {
		d := Detector{SphereMode: mode}
		for i, a := range spheres {
			for j, b := range spheres {
				assert.Equal(t, d.SphereSphere(a, b), d.SphereSphere(b, a), "mode %s pair %d,%d", mode, i, j)
			}
		}
	}
}

func TestSphereSphereModes(t *testing.T) {
	// Centers 3 apart, radii sum 4: overlapping, but 9 > 4 under the legacy formula.
	a := Sphere{Center: vec(0, 0, 0), Radius: 2}
	b := Sphere{Center: vec(3, 0, 0), Radius: 2}

	assert.True(t, Detector{SphereMode: SphereExact}.SphereSphere(a, b))
	assert.False(t, Detector{SphereMode: SphereLegacy}.SphereSphere(a, b))

	// Small spheres agree in both modes when clearly apart or clearly inside.
	c := Sphere{Center: vec(0, 0, 0), Radius: 0.25}
	near := Sphere{Center: vec(0.1, 0, 0), Radius: 0.25}
	far := Sphere{Center: vec(5, 0, 0), Radius: 0.25}
	for _, mode := range []SphereMode{SphereExact, SphereLegacy} {
		d := Detector{SphereMode: mode}
		assert.True(t, d.SphereSphere(c, near), mode.String())
		assert.False(t, d.SphereSphere(c, far), mode.String())
	}
}

func TestBoxSphere(t *testing.T) {
	d := Detector{}
	b := box(0, 0, 0, 2, 2, 2)

	assert.True(t, d.BoxSphere(b, Sphere{Center: vec(1, 1, 1), Radius: 0.1}))
	// Outside the box but inside its bounding sphere (radius sqrt(3)).
	assert.True(t, d.BoxSphere(b, Sphere{Center: vec(2.5, 2.5, 2.5), Radius: 0.2}))
	assert.False(t, d.BoxSphere(b, Sphere{Center: vec(10, 10, 10), Radius: 1}))
}

func TestMeshMeshUsesLocalBounds(t *testing.T) {
	d := Detector{}
	a := NewMesh([]rl.Vector3{vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0)}, EmptyBox())
	b := NewMesh([]rl.Vector3{vec(0.5, 0.5, 0), vec(2, 0.5, 0), vec(0.5, 2, 0)}, EmptyBox())
	c := NewMesh([]rl.Vector3{vec(5, 5, 5), vec(6, 5, 5), vec(5, 6, 5)}, EmptyBox())

	assert.True(t, d.MeshMesh(a, b))
	assert.False(t, d.MeshMesh(a, c))
}

func TestMeshBox(t *testing.T) {
	d := Detector{}
	mesh := NewMesh([]rl.Vector3{
		vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0),
		vec(10, 10, 10), vec(11, 10, 10), vec(10, 11, 10),
		vec(50, 50, 50), // partial triangle, ignored
	}, EmptyBox())

	assert.True(t, d.MeshBox(mesh, box(0.5, 0.5, -1, 2, 2, 1)))
	assert.True(t, d.MeshBox(mesh, box(10.5, 10.5, 9, 12, 12, 11)))
	assert.False(t, d.MeshBox(mesh, box(3, 3, 3, 4, 4, 4)), "gap between the two triangles")
	assert.False(t, d.MeshBox(mesh, box(49, 49, 49, 51, 51, 51)), "dangling vertex is not a triangle")
}

func TestMeshBoxWithTopologyIsStub(t *testing.T) {
	d := Detector{}
	mesh := NewMesh([]rl.Vector3{vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0)}, EmptyBox())
	mesh.Topology = []int32{0, 1, 2}

	assert.False(t, d.MeshBox(mesh, box(-1, -1, -1, 2, 2, 2)))
}
