package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

// crossPlanes are the two diagonal planes of a grass billboard.
var crossPlanes = [2][4]mgl32.Vec3{
	{{0.15, 0, 0.15}, {0.85, 0, 0.85}, {0.85, 1, 0.85}, {0.15, 1, 0.15}},
	{{0.15, 0, 0.85}, {0.85, 0, 0.15}, {0.85, 1, 0.15}, {0.15, 1, 0.85}},
}

// buildFoliage emits grass as two crossed double-sided quads and leaves as
// boxes culled against full blocks and other leaves.
func buildFoliage(vol Volume, buf *VertexBuffer) {
	for x := 0; x < world.ChunkSize; x++ {
		for y := 0; y < world.ChunkSize; y++ {
			for z := 0; z < world.ChunkSize; z++ {
				v := sample(vol, x, y, z)
				if v.IsNil() {
					continue
				}
				p := world.Pos{X: x, Y: y, Z: z}
				switch v.Shape {
				case voxel.Grass:
					emitCross(buf, p, v)
				case voxel.Leaves:
					emitBox(vol, buf, p, fullBox, v.ID, v.Light, hidesLeaves)
				}
			}
		}
	}
}

func hidesLeaves(n voxel.Voxel) bool {
	return occludes(n) || (n.Shape == voxel.Leaves && !n.IsNil())
}

func emitCross(buf *VertexBuffer, p world.Pos, v voxel.Voxel) {
	origin := mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
	uv := packUV(v.ID, v.Light)
	for _, plane := range crossPlanes {
		var quad [4]mgl32.Vec3
		for k, c := range plane {
			quad[k] = origin.Add(c)
		}
		normal := quad[1].Sub(quad[0]).Cross(quad[3].Sub(quad[0])).Normalize()
		buf.addQuad(quad, normal, uv)
		// Back side.
		buf.addQuad([4]mgl32.Vec3{quad[0], quad[3], quad[2], quad[1]}, normal.Mul(-1), uv)
	}
}
