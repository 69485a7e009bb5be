package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/config"
	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

// faceCorners selects, per face in world.DirNegX..DirPosZ order, the box
// corners of that face counter-clockwise when seen from outside. 0 picks the
// box minimum on an axis, 1 the maximum.
var faceCorners = [world.NumFaces][4][3]uint8{
	{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
	{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
}

var faceNormals = [world.NumFaces]mgl32.Vec3{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// box is an axis-aligned box inside a unit cell.
type box struct {
	min, max mgl32.Vec3
}

var (
	fullBox   = box{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}}
	fencePost = box{mgl32.Vec3{0.375, 0, 0.375}, mgl32.Vec3{0.625, 1, 0.625}}
)

var slabBoxes = map[voxel.Shape]box{
	voxel.SlabYMin: {mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0.5, 1}},
	voxel.SlabYMax: {mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{1, 1, 1}},
	voxel.SlabXMin: {mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.5, 1, 1}},
	voxel.SlabXMax: {mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{1, 1, 1}},
	voxel.SlabZMin: {mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 0.5}},
	voxel.SlabZMax: {mgl32.Vec3{0, 0, 0.5}, mgl32.Vec3{1, 1, 1}},
}

// onBoundary reports whether face f of b lies on the cell boundary, where a
// neighbor can hide it.
func (b box) onBoundary(f int) bool {
	axis := f / 2
	if f%2 == 0 {
		return b.min[axis] == 0
	}
	return b.max[axis] == 1
}

func (b box) corner(sel [3]uint8) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := 0; i < 3; i++ {
		if sel[i] == 0 {
			out[i] = b.min[i]
		} else {
			out[i] = b.max[i]
		}
	}
	return out
}

// fullBlock reports whether v renders as a full opaque cube. With forced
// blocky terrain, solid isosurface voxels count too.
func fullBlock(v voxel.Voxel) bool {
	if v.IsNil() || v.IsLiquid() {
		return false
	}
	if v.Shape == voxel.Cube {
		return true
	}
	return config.ForceBlocky() && v.Shape == voxel.Isosurface && v.IsSolid()
}

// occludes reports whether a neighbor hides a block face touching it.
func occludes(n voxel.Voxel) bool {
	return fullBlock(n) || isoSolid(n)
}

// emitBox appends the visible faces of b placed in cell p. skip reports, for
// a boundary face, whether the neighbor on that side hides it.
func emitBox(vol Volume, buf *VertexBuffer, p world.Pos, b box, material uint16, own voxel.Light, skip func(voxel.Voxel) bool) {
	origin := mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
	for f := 0; f < world.NumFaces; f++ {
		light := own
		if b.onBoundary(f) {
			d := world.Dir(f)
			n, ok := vol.Sample(p.X+d.X, p.Y+d.Y, p.Z+d.Z)
			if ok && skip(n) {
				continue
			}
			if ok {
				light = n.Light
			}
		}
		var quad [4]mgl32.Vec3
		for k, sel := range faceCorners[f] {
			quad[k] = origin.Add(b.corner(sel))
		}
		buf.addQuad(quad, faceNormals[f], packUV(material, light))
	}
}

// buildBlocks emits cube, slab and fence voxels as explicit boxes.
func buildBlocks(vol Volume, buf *VertexBuffer) {
	for x := 0; x < world.ChunkSize; x++ {
		for y := 0; y < world.ChunkSize; y++ {
			for z := 0; z < world.ChunkSize; z++ {
				v := sample(vol, x, y, z)
				if v.IsNil() || v.IsLiquid() {
					continue
				}
				p := world.Pos{X: x, Y: y, Z: z}
				switch {
				case fullBlock(v):
					emitBox(vol, buf, p, fullBox, v.ID, v.Light, occludes)
				case v.Shape.IsSlab():
					emitBox(vol, buf, p, slabBoxes[v.Shape], v.ID, v.Light, occludes)
				case v.Shape == voxel.Fence:
					emitFence(vol, buf, p, v)
				}
			}
		}
	}
}

// emitFence builds a post plus two rails towards every horizontal neighbor
// that is a fence or a full block.
func emitFence(vol Volume, buf *VertexBuffer, p world.Pos, v voxel.Voxel) {
	emitBox(vol, buf, p, fencePost, v.ID, v.Light, occludes)
	for _, f := range []int{world.DirNegX, world.DirPosX, world.DirNegZ, world.DirPosZ} {
		d := world.Dir(f)
		n, ok := vol.Sample(p.X+d.X, p.Y, p.Z+d.Z)
		if !ok || (n.Shape != voxel.Fence && !fullBlock(n)) {
			continue
		}
		for _, rail := range fenceRails(f) {
			emitBox(vol, buf, p, rail, v.ID, v.Light, occludes)
		}
	}
}

func fenceRails(f int) [2]box {
	var rails [2]box
	heights := [2][2]float32{{0.375, 0.5625}, {0.75, 0.9375}}
	for i, h := range heights {
		r := box{mgl32.Vec3{0.4375, h[0], 0.4375}, mgl32.Vec3{0.5625, h[1], 0.5625}}
		switch f {
		case world.DirNegX:
			r.min[0] = 0
		case world.DirPosX:
			r.max[0] = 1
		case world.DirNegZ:
			r.min[2] = 0
		case world.DirPosZ:
			r.max[2] = 1
		}
		rails[i] = r
	}
	return rails
}
