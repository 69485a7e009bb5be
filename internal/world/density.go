package world

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"

	"voxcore/internal/voxel"
)

// NoiseGenerator builds terrain from a 3D density field, so overhangs and
// caves come out of the same function as the surface. Density maps directly
// to the voxel isovalue: positive density is solid, i.e. a negative isovalue.
type NoiseGenerator struct {
	seed             int64
	noise            opensimplex.Noise
	scale            float64 // noise frequency
	baseHeight       int     // target surface level
	gradientStrength float64 // altitude density gradient
	octaves          int
	persistence      float64
	lacunarity       float64
	seaLevel         int

	treeChance  uint64 // 1 in treeChance surface columns grows a tree
	grassChance uint64
}

// NewNoiseGenerator creates a density generator. The noise is read-only
// after construction, so one generator can serve every load worker.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		seed:             seed,
		noise:            opensimplex.New(seed),
		scale:            1.0 / 48.0,
		baseHeight:       24,
		gradientStrength: 16.0,
		octaves:          4,
		persistence:      0.5,
		lacunarity:       2.0,
		seaLevel:         12,
		treeChance:       97,
		grassChance:      6,
	}
}

// density is positive inside terrain and negative in air.
func (g *NoiseGenerator) density(wx, wy, wz int) float64 {
	nx := float64(wx) * g.scale
	ny := float64(wy) * g.scale
	nz := float64(wz) * g.scale

	amplitude, frequency := 1.0, 1.0
	sum, norm := 0.0, 0.0
	for range g.octaves {
		sum += g.noise.Eval3(nx*frequency, ny*frequency, nz*frequency) * amplitude
		norm += amplitude
		amplitude *= g.persistence
		frequency *= g.lacunarity
	}
	n := sum / norm // [-1,1]

	return n + (float64(g.baseHeight)-float64(wy))/g.gradientStrength
}

// SurfaceHeightAt returns an estimate of the terrain surface at a column,
// used for spawning and previews.
func (g *NoiseGenerator) SurfaceHeightAt(wx, wz int) int {
	top := g.baseHeight + int(g.gradientStrength) + 1
	bottom := g.baseHeight - int(g.gradientStrength) - 1
	for y := top; y >= bottom; y-- {
		if g.density(wx, y, wz) > 0 {
			return y
		}
	}
	return bottom
}

// Generate samples the density on a coarse lattice and fills the chunk by
// trilinear interpolation.
func (g *NoiseGenerator) Generate(c *Chunk) error {
	o := c.Origin()
	if o.Y > g.baseHeight+int(g.gradientStrength)+1 && o.Y > g.seaLevel {
		return nil // all air
	}

	const step = 4
	const n = ChunkSize/step + 1

	var samples [n][n][n]float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				samples[i][j][k] = g.density(o.X+i*step, o.Y+j*step, o.Z+k*step)
			}
		}
	}

	// One extra layer on top so surface voxels know what is above them.
	var dens [ChunkSize][ChunkSize + 1][ChunkSize]float64
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y <= ChunkSize; y++ {
			for z := 0; z < ChunkSize; z++ {
				dens[x][y][z] = trilinear(&samples, x, y, z, step)
			}
		}
	}

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			for y := 0; y < ChunkSize; y++ {
				d := dens[x][y][z]
				wy := o.Y + y
				var v voxel.Voxel
				switch {
				case d > 0:
					v = voxel.New(g.materialFor(dens[x][y+1][z], d), voxel.Isosurface, float32(-d))
				case wy < g.seaLevel:
					v = voxel.New(voxel.Water, voxel.Isosurface, float32(-d))
				default:
					v = voxel.New(voxel.Air, voxel.Isosurface, float32(-d))
				}
				c.SetVoxel(Pos{x, y, z}, v)
			}
		}
	}
	return nil
}

func (g *NoiseGenerator) materialFor(above, d float64) uint16 {
	switch {
	case above <= 0:
		return voxel.GrassBlock
	case d < 0.35:
		return voxel.Dirt
	}
	return voxel.Stone
}

func trilinear(s *[ChunkSize/4 + 1][ChunkSize/4 + 1][ChunkSize/4 + 1]float64, x, y, z, step int) float64 {
	ix, iy, iz := x/step, y/step, z/step
	if ix == len(s)-1 {
		ix--
	}
	if iy == len(s)-1 {
		iy--
	}
	if iz == len(s)-1 {
		iz--
	}
	tx := float64(x-ix*step) / float64(step)
	ty := float64(y-iy*step) / float64(step)
	tz := float64(z-iz*step) / float64(step)

	c00 := lerp(s[ix][iy][iz], s[ix+1][iy][iz], tx)
	c10 := lerp(s[ix][iy+1][iz], s[ix+1][iy+1][iz], tx)
	c01 := lerp(s[ix][iy][iz+1], s[ix+1][iy][iz+1], tx)
	c11 := lerp(s[ix][iy+1][iz+1], s[ix+1][iy+1][iz+1], tx)
	return lerp(lerp(c00, c10, ty), lerp(c01, c11, ty), tz)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Populate decorates grass surfaces with trees and tall grass. Features may
// cross into any neighbor, which is why it only runs once all are linked.
func (g *NoiseGenerator) Populate(c *Chunk) {
	o := c.Origin()
	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			for y := ChunkSize - 1; y >= 0; y-- {
				v := c.Voxel(Pos{x, y, z})
				if v.ID != voxel.GrassBlock || !v.IsSolid() {
					continue
				}
				above, ok := c.VoxelRelative(Pos{x, y + 1, z})
				if !ok || above.IsSolid() || !above.IsNil() {
					continue
				}
				h := hash2(int64(o.X+x), int64(o.Z+z)*31+int64(o.Y+y), g.seed)
				switch {
				case h%g.treeChance == 0:
					g.growTree(c, Pos{x, y + 1, z}, 4+int(h>>8)%2)
				case (h>>16)%g.grassChance == 0:
					c.SetVoxelRelative(Pos{x, y + 1, z}, voxel.Voxel{ID: voxel.TallGrass, Shape: voxel.Grass})
				}
				break
			}
		}
	}
}

// growTree places a log trunk and a leaf canopy starting at base.
func (g *NoiseGenerator) growTree(c *Chunk, base Pos, height int) {
	trunk := voxel.Voxel{ID: voxel.Log, Shape: voxel.Cube}
	leaves := voxel.Voxel{ID: voxel.LeavesMaterial, Shape: voxel.Leaves}

	top := base.Add(Pos{0, height, 0})
	for dx := -2; dx <= 2; dx++ {
		for dy := -2; dy <= 1; dy++ {
			for dz := -2; dz <= 2; dz++ {
				if dx*dx+dy*dy+dz*dz > 5 {
					continue
				}
				p := top.Add(Pos{dx, dy, dz})
				if cur, ok := c.VoxelRelative(p); ok && cur.IsNil() && !cur.IsSolid() {
					c.SetVoxelRelative(p, leaves)
				}
			}
		}
	}
	for i := 0; i < height; i++ {
		c.SetVoxelRelative(base.Add(Pos{0, i, 0}), trunk)
	}
}

func (g *NoiseGenerator) String() string {
	return fmt.Sprintf("noise(seed=%d)", g.seed)
}
