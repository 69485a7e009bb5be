package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/profiling"
	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 8.0
)

// VoxelSource resolves world positions to voxels. ok is false where no chunk
// is loaded.
type VoxelSource interface {
	VoxelAt(p world.Pos) (voxel.Voxel, bool)
}

// Targetable reports whether a ray or a body can hit v: smooth terrain
// inside the surface, or any block-shaped material. Liquids are skipped.
func Targetable(v voxel.Voxel) bool {
	if v.IsLiquid() {
		return false
	}
	if v.Shape == voxel.Isosurface {
		return v.IsSolid()
	}
	return !v.IsNil()
}

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	Hit      bool
	Position world.Pos
	// Adjacent is the last empty cell before Position, where a placed voxel goes.
	Adjacent world.Pos
	// Face is the face of Position the ray entered through (world.DirNegX..DirPosZ),
	// or -1 when the ray started inside it.
	Face     int
	Distance float32
}

// Raycast walks the voxel grid from start along direction, visiting every
// cell the ray passes through, and stops at the first targetable voxel
// between minDist and maxDist. Voxel p occupies [p, p+1) on each axis. The
// walk ends early when it reaches an unloaded cell.
func Raycast(src VoxelSource, start, direction mgl32.Vec3, minDist, maxDist float32) RaycastResult {
	defer profiling.Track("physics.Raycast")()

	result := RaycastResult{Face: -1}
	if direction.Len() == 0 {
		return result
	}
	dir := direction.Normalize()

	cell := [3]int{
		int(math.Floor(float64(start.X()))),
		int(math.Floor(float64(start.Y()))),
		int(math.Floor(float64(start.Z()))),
	}
	var (
		step   [3]int
		tMax   [3]float32
		tDelta [3]float32
	)
	inf := float32(math.Inf(1))
	for i := 0; i < 3; i++ {
		switch {
		case dir[i] > 0:
			step[i] = 1
			tDelta[i] = 1 / dir[i]
			tMax[i] = (float32(cell[i]+1) - start[i]) / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tDelta[i] = -1 / dir[i]
			tMax[i] = (start[i] - float32(cell[i])) / -dir[i]
		default:
			tDelta[i] = inf
			tMax[i] = inf
		}
	}

	prev := cell
	face := -1
	t := float32(0)
	for t <= maxDist {
		p := world.Pos{X: cell[0], Y: cell[1], Z: cell[2]}
		v, ok := src.VoxelAt(p)
		if !ok {
			return result
		}
		if t >= minDist && Targetable(v) {
			result.Hit = true
			result.Position = p
			result.Adjacent = world.Pos{X: prev[0], Y: prev[1], Z: prev[2]}
			result.Face = face
			result.Distance = t
			return result
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		prev = cell
		cell[axis] += step[axis]
		t = tMax[axis]
		tMax[axis] += tDelta[axis]
		// Stepping +axis enters the next cell through its negative face.
		face = axis * 2
		if step[axis] < 0 {
			face++
		}
	}
	return result
}
