package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (a AABB) Offset(d mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min[0] < b.Max[0] && a.Max[0] > b.Min[0] &&
		a.Min[1] < b.Max[1] && a.Max[1] > b.Min[1] &&
		a.Min[2] < b.Max[2] && a.Max[2] > b.Min[2]
}

// Capsule is the actor collision volume. Position is the bottom centre.
type Capsule struct {
	Radius float64
	Height float64
}

func DefaultCapsule() Capsule {
	return Capsule{Radius: DefaultCapsuleRadius, Height: DefaultCapsuleHeight}
}

// Bounds approximates the capsule with its bounding box at pos.
func (c Capsule) Bounds(pos mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{pos[0] - c.Radius, pos[1], pos[2] - c.Radius},
		Max: mgl64.Vec3{pos[0] + c.Radius, pos[1] + c.Height, pos[2] + c.Radius},
	}
}

func CollidesWithBlock(box AABB, store BlockStore) bool {
	if store == nil {
		return false
	}

	minX, maxX := floorForMin(box.Min[0]), floorForMax(box.Max[0])
	minY, maxY := floorForMin(box.Min[1]), floorForMax(box.Max[1])
	minZ, maxZ := floorForMin(box.Min[2]), floorForMax(box.Max[2])

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if !store.IsSolid(x, y, z) {
					continue
				}
				if box.Intersects(cellBounds(x, y, z)) {
					return true
				}
			}
		}
	}
	return false
}

// ResolveMovement sweeps box by delta one axis at a time (Y, X, Z) and
// returns the displacement actually applied. blocked is set when any axis
// was cut short.
func ResolveMovement(box AABB, delta mgl64.Vec3, store BlockStore) (applied mgl64.Vec3, blocked bool) {
	for _, axis := range [3]int{1, 0, 2} {
		allowed := resolveAxis(box, axis, delta[axis], store)
		if !nearlyEqual(allowed, delta[axis]) {
			blocked = true
		}
		applied[axis] = allowed
		var step mgl64.Vec3
		step[axis] = allowed
		box = box.Offset(step)
	}
	return applied, blocked
}

func resolveAxis(box AABB, axis int, delta float64, store BlockStore) float64 {
	if store == nil || nearlyZero(delta) {
		return delta
	}

	u, v := (axis+1)%3, (axis+2)%3
	minU, maxU := floorForMin(box.Min[u]), floorForMax(box.Max[u])
	minV, maxV := floorForMin(box.Min[v]), floorForMax(box.Max[v])

	solid := func(c, i, j int) bool {
		var cell [3]int
		cell[axis], cell[u], cell[v] = c, i, j
		return store.IsSolid(cell[0], cell[1], cell[2])
	}

	allowed := delta
	if delta > 0 {
		start := int(math.Floor(box.Max[axis]))
		end := int(math.Floor(box.Max[axis] + delta))
		for c := start; c <= end; c++ {
			for i := minU; i <= maxU; i++ {
				for j := minV; j <= maxV; j++ {
					if !solid(c, i, j) {
						continue
					}
					if candidate := float64(c) - box.Max[axis]; candidate < allowed {
						allowed = candidate
					}
				}
			}
		}
		return allowed
	}

	start := int(math.Floor(box.Min[axis] + delta))
	end := int(math.Floor(box.Min[axis] - CollisionAxisTolerance))
	for c := end; c >= start; c-- {
		for i := minU; i <= maxU; i++ {
			for j := minV; j <= maxV; j++ {
				if !solid(c, i, j) {
					continue
				}
				if candidate := float64(c+1) - box.Min[axis]; candidate > allowed {
					allowed = candidate
				}
			}
		}
	}
	return allowed
}

func cellBounds(x, y, z int) AABB {
	return AABB{
		Min: mgl64.Vec3{float64(x), float64(y), float64(z)},
		Max: mgl64.Vec3{float64(x + 1), float64(y + 1), float64(z + 1)},
	}
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}
