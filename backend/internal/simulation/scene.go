package simulation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

// Collision layers.
const (
	LayerDefault uint32 = 1 << iota
	LayerTrack
	LayerProps
)

// Collider is a static shape in the scene.
type Collider interface {
	// sweep returns the distance along dir at which a sphere first touches
	// the shape; negative means it starts overlapping.
	sweep(origin mgl64.Vec3, radius float64, dir mgl64.Vec3) (float64, bool)
	// surfaceAt returns the top surface height under (x, z).
	surfaceAt(x, z float64) (float64, bool)
	layer() uint32
	trigger() bool
}

// Plane is an infinite horizontal ground at Height.
type Plane struct {
	Height  float64
	Layer   uint32
	Trigger bool
}

func (p Plane) sweep(origin mgl64.Vec3, radius float64, dir mgl64.Vec3) (float64, bool) {
	gap := origin.Y() - radius - p.Height
	if gap <= 0 {
		return gap, true
	}
	if dir.Y() >= 0 {
		return 0, false
	}
	return gap / -dir.Y(), true
}

func (p Plane) surfaceAt(float64, float64) (float64, bool) { return p.Height, true }
func (p Plane) layer() uint32                               { return p.Layer }
func (p Plane) trigger() bool                               { return p.Trigger }

// Box is an axis-aligned solid block, used for platforms and ramps' decks.
type Box struct {
	Min, Max mgl64.Vec3
	Layer    uint32
	Trigger  bool
}

// sweep treats the sphere as a ray against the box grown by radius (slab
// test). Corners are slightly conservative compared to a rounded box.
func (b Box) sweep(origin mgl64.Vec3, radius float64, dir mgl64.Vec3) (float64, bool) {
	lo := b.Min.Sub(mgl64.Vec3{radius, radius, radius})
	hi := b.Max.Add(mgl64.Vec3{radius, radius, radius})

	tMin, tMax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	if tMax < 0 {
		return 0, false
	}
	return tMin, true
}

func (b Box) surfaceAt(x, z float64) (float64, bool) {
	if x < b.Min.X() || x > b.Max.X() || z < b.Min.Z() || z > b.Max.Z() {
		return 0, false
	}
	return b.Max.Y(), true
}

func (b Box) layer() uint32 { return b.Layer }
func (b Box) trigger() bool { return b.Trigger }

// Scene is the static collision world.
type Scene struct {
	colliders []Collider
}

var _ vehicle.CollisionWorld = (*Scene)(nil)

func NewScene(colliders ...Collider) *Scene {
	return &Scene{colliders: colliders}
}

// FlatTrack is a single ground plane at height zero.
func FlatTrack() *Scene {
	return NewScene(Plane{Layer: LayerTrack})
}

// Add appends a collider.
func (s *Scene) Add(c Collider) {
	s.colliders = append(s.colliders, c)
}

// SphereCast reports whether a sphere moved from origin along dir for up to
// maxDistance touches any collider in mask. A sphere that starts inside a
// collider counts as a hit.
func (s *Scene) SphereCast(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDistance float64, mask uint32, ignoreTriggers bool) bool {
	if dir.Len() == 0 {
		return false
	}
	dir = dir.Normalize()
	for _, c := range s.colliders {
		if c.layer()&mask == 0 {
			continue
		}
		if ignoreTriggers && c.trigger() {
			continue
		}
		if d, ok := c.sweep(origin, radius, dir); ok && d <= maxDistance {
			return true
		}
	}
	return false
}

// SupportHeight is the highest solid surface under (x, z) that lies at or
// below y. The second value is false over empty space.
func (s *Scene) SupportHeight(x, y, z float64) (float64, bool) {
	best, found := math.Inf(-1), false
	for _, c := range s.colliders {
		if c.trigger() {
			continue
		}
		h, ok := c.surfaceAt(x, z)
		if !ok || h > y {
			continue
		}
		if h > best {
			best, found = h, true
		}
	}
	return best, found
}

// Resolve keeps the body's contact sphere on top of the surface beneath it.
// It returns true when the body is touching a surface.
func (s *Scene) Resolve(b *Body) bool {
	p := b.Position()
	ground, ok := s.SupportHeight(p.X(), p.Y()+ContactRadius, p.Z())
	if !ok {
		return false
	}
	penetration := ground - (p.Y() - ContactRadius)
	if penetration < 0 {
		return false
	}
	b.position[1] += penetration
	if b.velocity[1] < 0 {
		b.velocity[1] = 0
	}
	return true
}
