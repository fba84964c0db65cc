package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type RaycastHit struct {
	Object   ObjectID
	Name     string
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// Raycast returns the closest object hit by the ray. Spheres are tested
// exactly; boxes, point clouds and meshes by their world-space bounds.
func (e *Engine) Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	if rl.Vector3LengthSqr(direction) == 0 {
		return RaycastHit{}, false
	}
	direction = rl.Vector3Normalize(direction)
	var closest RaycastHit
	closest.Distance = maxDistance
	hit := false

	e.mu.RLock()
	defer e.mu.RUnlock()
	for i := range e.slots {
		s := &e.slots[i]
		if !s.live {
			continue
		}
		var h RaycastHit
		var ok bool
		switch shape := e.shapes[s.obj.Shape].(type) {
		case *Sphere:
			h, ok = raycastSphere(origin, direction, *shape, maxDistance)
		default:
			if bounds, bounded := worldBounds(shape, s.obj.Matrix); bounded && !bounds.IsEmpty() {
				h, ok = raycastBox(origin, direction, bounds, maxDistance)
			}
		}
		if ok && h.Distance < closest.Distance {
			closest = h
			closest.Object = ObjectID{index: uint32(i), gen: s.gen}
			closest.Name = s.obj.Name
			hit = true
		}
	}
	return closest, hit
}

func raycastBox(origin, direction rl.Vector3, box Box, maxDistance float32) (RaycastHit, bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	slab := func(o, d, lo, hi float32) bool {
		if d == 0 {
			return o >= lo && o <= hi
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		return tmin <= tmax
	}
	if !slab(origin.X, direction.X, box.Min.X, box.Max.X) ||
		!slab(origin.Y, direction.Y, box.Min.Y, box.Max.Y) ||
		!slab(origin.Z, direction.Z, box.Min.Z, box.Max.Z) {
		return RaycastHit{}, false
	}
	if tmax < 0 || tmin > maxDistance {
		return RaycastHit{}, false
	}

	// Origin inside the box: report the exit point.
	t := tmin
	if t < 0 {
		t = tmax
	}
	if t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))

	var normal rl.Vector3
	const epsilon = 0.001
	switch {
	case math32.Abs(point.X-box.Min.X) < epsilon:
		normal = rl.Vector3{X: -1}
	case math32.Abs(point.X-box.Max.X) < epsilon:
		normal = rl.Vector3{X: 1}
	case math32.Abs(point.Y-box.Min.Y) < epsilon:
		normal = rl.Vector3{Y: -1}
	case math32.Abs(point.Y-box.Max.Y) < epsilon:
		normal = rl.Vector3{Y: 1}
	case math32.Abs(point.Z-box.Min.Z) < epsilon:
		normal = rl.Vector3{Z: -1}
	default:
		normal = rl.Vector3{Z: 1}
	}

	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

func raycastSphere(origin, direction rl.Vector3, sphere Sphere, maxDistance float32) (RaycastHit, bool) {
	oc := rl.Vector3Subtract(origin, sphere.Center)
	a := rl.Vector3DotProduct(direction, direction)
	b := 2.0 * rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - sphere.Radius*sphere.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return RaycastHit{}, false
	}

	root := math32.Sqrt(discriminant)
	t := (-b - root) / (2 * a)
	if t < 0 {
		t = (-b + root) / (2 * a)
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, sphere.Center))

	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}
