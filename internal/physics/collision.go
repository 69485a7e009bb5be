package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/world"
)

// AABB is an axis-aligned box in world space.
type AABB struct {
	Min, Max mgl32.Vec3
}

// BodyBox returns the box of an upright body standing at feet, with the
// given half width and height.
func BodyBox(feet mgl32.Vec3, halfWidth, height float32) AABB {
	return AABB{
		Min: mgl32.Vec3{feet.X() - halfWidth, feet.Y(), feet.Z() - halfWidth},
		Max: mgl32.Vec3{feet.X() + halfWidth, feet.Y() + height, feet.Z() + halfWidth},
	}
}

// CellBox returns the unit box of voxel p.
func CellBox(p world.Pos) AABB {
	lo := p.Vec3()
	return AABB{Min: lo, Max: lo.Add(mgl32.Vec3{1, 1, 1})}
}

// Intersects reports whether a and b overlap with non-zero volume.
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() && a.Max.Y() > b.Min.Y() &&
		a.Min.Z() < b.Max.Z() && a.Max.Z() > b.Min.Z()
}

// Collides reports whether box overlaps any targetable voxel. Unloaded cells
// count as blocking.
func Collides(src VoxelSource, box AABB) bool {
	lo := world.PosFromVec3(box.Min)
	hi := world.PosFromVec3(box.Max)
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				p := world.Pos{X: x, Y: y, Z: z}
				v, ok := src.VoxelAt(p)
				if ok && !Targetable(v) {
					continue
				}
				if box.Intersects(CellBox(p)) {
					return true
				}
			}
		}
	}
	return false
}

// GroundLevel scans down from fromY at column (x, z) and returns the top of
// the highest targetable voxel within depth cells. ok is false when nothing
// solid was found or the column is not loaded.
func GroundLevel(src VoxelSource, x, z float32, fromY, depth int) (float32, bool) {
	bx := int(math.Floor(float64(x)))
	bz := int(math.Floor(float64(z)))
	for y := fromY; y > fromY-depth; y-- {
		v, ok := src.VoxelAt(world.Pos{X: bx, Y: y, Z: bz})
		if !ok {
			return 0, false
		}
		if Targetable(v) {
			return float32(y + 1), true
		}
	}
	return 0, false
}
