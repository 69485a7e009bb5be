package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

// cornerOffsets enumerates the 8 corners of a unit cell. Bit 0 is x, bit 1 y, bit 2 z.
var cornerOffsets = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

// cellEdges pairs corners along each axis, four edges per axis in x, y, z
// order. The first corner is always on the low side.
var cellEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// quadOrder turns four quad corners into two triangles; quadOrderReversed
// traverses the same table backwards.
var (
	quadOrder         = [6]int{0, 1, 2, 2, 3, 0}
	quadOrderReversed = [6]int{0, 3, 2, 2, 1, 0}
)

// axisAdjacency lists, per axis, the four cells sharing the edge between a
// sample and its positive neighbor on that axis. Walked with quadOrder the
// quad faces the negative axis.
var axisAdjacency = [3][4]world.Pos{
	{{}, {Z: -1}, {Y: -1, Z: -1}, {Y: -1}},
	{{}, {X: -1}, {X: -1, Z: -1}, {Z: -1}},
	{{}, {Y: -1}, {X: -1, Y: -1}, {X: -1}},
}

// Adjacency returns the offset of the corner-th cell around an edge on axis.
func Adjacency(axis, corner int) world.Pos {
	return axisAdjacency[axis][corner]
}

var axisUnit = [3]world.Pos{{X: 1}, {Y: 1}, {Z: 1}}

const (
	sampleSpan = world.ChunkSize + 2 // samples at -1..16
	cellSpan   = world.ChunkSize + 1 // cells at -1..15
)

type cell struct {
	pos    mgl32.Vec3
	normal mgl32.Vec3
	uv     mgl32.Vec2
	ready  bool
}

// surfaceNets caches the decoded field so every sample is decoded once.
type surfaceNets struct {
	voxels  [sampleSpan * sampleSpan * sampleSpan]voxel.Voxel
	iso     [sampleSpan * sampleSpan * sampleSpan]float32
	solid   [sampleSpan * sampleSpan * sampleSpan]bool
	defined [sampleSpan * sampleSpan * sampleSpan]bool
	cells   [cellSpan * cellSpan * cellSpan]cell
}

func sampleIndex(x, y, z int) int {
	return ((x+1)*sampleSpan+(y+1))*sampleSpan + (z + 1)
}

func cellIndex(x, y, z int) int {
	return ((x+1)*cellSpan+(y+1))*cellSpan + (z + 1)
}

// isoSolid reports whether v is inside the smooth terrain. Block shapes are
// meshed by their own pass and count as void here.
func isoSolid(v voxel.Voxel) bool {
	return v.IsSolid() && !v.IsCube()
}

func newSurfaceNets(vol Volume) *surfaceNets {
	s := &surfaceNets{}
	for x := -1; x <= world.ChunkSize; x++ {
		for y := -1; y <= world.ChunkSize; y++ {
			for z := -1; z <= world.ChunkSize; z++ {
				i := sampleIndex(x, y, z)
				v, ok := vol.Sample(x, y, z)
				s.voxels[i], s.defined[i] = v, ok
				s.iso[i] = v.Isovalue()
				s.solid[i] = ok && isoSolid(v)
			}
		}
	}
	return s
}

// cornerIndices returns the sample indices of a cell's 8 corners.
func cornerIndices(cx, cy, cz int) [8]int {
	var out [8]int
	for k, c := range cornerOffsets {
		out[k] = sampleIndex(cx+c[0], cy+c[1], cz+c[2])
	}
	return out
}

// featurePoint averages the zero crossings on the cell's edges. Edges with an
// undefined end contribute nothing; a cell with no crossing yields its center.
func (s *surfaceNets) featurePoint(corners *[8]int) mgl32.Vec3 {
	var sum mgl32.Vec3
	n := 0
	for _, e := range cellEdges {
		ia, ib := corners[e[0]], corners[e[1]]
		if !s.defined[ia] || !s.defined[ib] || s.solid[ia] == s.solid[ib] {
			continue
		}
		v0, v1 := s.iso[ia], s.iso[ib]
		t := float32(0.5)
		if d := v0 - v1; d != 0 {
			t = mgl32.Clamp(v0/d, 0, 1)
		}
		a, b := cornerOffsets[e[0]], cornerOffsets[e[1]]
		sum = sum.Add(mgl32.Vec3{
			float32(a[0]) + t*float32(b[0]-a[0]),
			float32(a[1]) + t*float32(b[1]-a[1]),
			float32(a[2]) + t*float32(b[2]-a[2]),
		})
		n++
	}
	if n == 0 {
		return mgl32.Vec3{0.5, 0.5, 0.5}
	}
	return sum.Mul(1 / float32(n))
}

// normal sums forward differences along the cell's edges. The field grows
// towards void, so the gradient already points out of the terrain.
func (s *surfaceNets) normal(corners *[8]int) mgl32.Vec3 {
	var g [3]float32
	for k, e := range cellEdges {
		ia, ib := corners[e[0]], corners[e[1]]
		if s.defined[ia] && s.defined[ib] {
			g[k/4] += s.iso[ib] - s.iso[ia]
		}
	}
	n := mgl32.Vec3{g[0], g[1], g[2]}
	if n.Len() < 1e-6 {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Normalize()
}

// attributes picks the material of the solid corner nearest the feature
// point and the brightest light among the defined corners.
func (s *surfaceNets) attributes(corners *[8]int, point mgl32.Vec3) mgl32.Vec2 {
	var (
		material uint16
		light    voxel.Light
		best     = float32(1e9)
	)
	for k, idx := range corners {
		if !s.defined[idx] {
			continue
		}
		v := s.voxels[idx]
		light = light.Max(v.Light)
		if !s.solid[idx] {
			continue
		}
		c := cornerOffsets[k]
		d := point.Sub(mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}).LenSqr()
		if d < best {
			best, material = d, v.ID
		}
	}
	return packUV(material, light)
}

func (s *surfaceNets) cell(p world.Pos) *cell {
	c := &s.cells[cellIndex(p.X, p.Y, p.Z)]
	if c.ready {
		return c
	}
	corners := cornerIndices(p.X, p.Y, p.Z)
	point := s.featurePoint(&corners)
	c.pos = mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}.Add(point)
	c.normal = s.normal(&corners)
	c.uv = s.attributes(&corners, point)
	c.ready = true
	return c
}

// emit walks every sample of the chunk and emits a quad for each sign change
// against its positive neighbor on each axis.
func (s *surfaceNets) emit(buf *VertexBuffer) {
	for x := 0; x < world.ChunkSize; x++ {
		for y := 0; y < world.ChunkSize; y++ {
			for z := 0; z < world.ChunkSize; z++ {
				i := sampleIndex(x, y, z)
				if !s.defined[i] {
					continue
				}
				p := world.Pos{X: x, Y: y, Z: z}
				for axis := 0; axis < 3; axis++ {
					q := p.Add(axisUnit[axis])
					j := sampleIndex(q.X, q.Y, q.Z)
					if !s.defined[j] || s.solid[i] == s.solid[j] {
						continue
					}
					order := &quadOrder
					if s.solid[i] {
						order = &quadOrderReversed
					}
					for _, k := range order {
						c := s.cell(p.Add(Adjacency(axis, k)))
						buf.add(c.pos, c.normal, c.uv)
					}
				}
			}
		}
	}
}

// buildSurfaceNets appends the isosurface of vol to buf.
func buildSurfaceNets(vol Volume, buf *VertexBuffer) {
	newSurfaceNets(vol).emit(buf)
}
