package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

// fluidInset lowers the liquid surface below the top of its cell.
const fluidInset = 0.125

// buildLiquid emits one flat quad per liquid voxel whose top is exposed.
func buildLiquid(vol Volume, buf *VertexBuffer) {
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			for y := 0; y < world.ChunkSize; y++ {
				v := sample(vol, x, y, z)
				if !v.IsLiquid() {
					continue
				}
				above, ok := vol.Sample(x, y+1, z)
				if !shouldRenderSurface(above, ok) {
					continue
				}
				renderFluidTop(buf, world.Pos{X: x, Y: y, Z: z}, v, above.Light)
			}
		}
	}
}

// shouldRenderSurface hides the top face under more liquid or anything solid.
// An unloaded neighbor shows the surface.
func shouldRenderSurface(above voxel.Voxel, ok bool) bool {
	if !ok {
		return true
	}
	return !above.IsLiquid() && !occludes(above)
}

func renderFluidTop(buf *VertexBuffer, p world.Pos, v voxel.Voxel, light voxel.Light) {
	h := float32(p.Y) + 1 - fluidInset
	x0, z0 := float32(p.X), float32(p.Z)
	x1, z1 := x0+1, z0+1
	quad := [4]mgl32.Vec3{
		{x0, h, z0},
		{x0, h, z1},
		{x1, h, z1},
		{x1, h, z0},
	}
	buf.addQuad(quad, mgl32.Vec3{0, 1, 0}, packUV(v.ID, light))
}
