package chunksys

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/physics"
	"voxcore/internal/profiling"
	"voxcore/internal/voxel"
	"voxcore/internal/wire"
	"voxcore/internal/world"
)

// Viewer body used to reject placements inside the viewer.
const (
	viewerHalfWidth = 0.3
	viewerHeight    = 1.8
)

// VoxelAt returns the voxel at world position p.
func (s *System) VoxelAt(p world.Pos) (voxel.Voxel, bool) {
	c, ok := s.chunks[world.ChunkOrigin(p)]
	if !ok {
		return voxel.Voxel{}, false
	}
	return c.Voxel(world.LocalPos(p)), true
}

// Raycast finds the first targetable voxel along a view ray.
func (s *System) Raycast(start, direction mgl32.Vec3, maxDist float32) physics.RaycastResult {
	return physics.Raycast(s, start, direction, physics.MinReachDistance, maxDist)
}

// MutateVoxel applies fn to the voxel at world position p, relights it and
// marks every chunk whose mesh can see the cell dirty. Light is owned by the
// propagator; changes fn makes to it are discarded.
func (s *System) MutateVoxel(p world.Pos, fn func(v *voxel.Voxel)) error {
	if !s.mutate(p, fn) {
		if _, ok := s.chunks[world.ChunkOrigin(p)]; !ok {
			return ErrNotLoaded
		}
		return nil
	}
	s.markTouched(s.light.Propagate())
	return nil
}

// mutate is MutateVoxel without running the light queues. It reports
// whether the voxel changed.
func (s *System) mutate(p world.Pos, fn func(v *voxel.Voxel)) bool {
	o := world.ChunkOrigin(p)
	c, ok := s.chunks[o]
	if !ok {
		return false
	}
	lp := world.LocalPos(p)
	old := c.Voxel(lp)
	v := old
	fn(&v)
	v.Light = old.Light
	if v == old {
		return false
	}
	c.SetVoxel(lp, v)
	c.SetEdited(true)

	s.MarkDirty(o)
	for i := 0; i < world.NumNeighbors; i++ {
		if onBoundary(lp, world.Dir(i)) {
			s.MarkDirty(o.Add(world.Dir(i).Mul(world.ChunkSize)))
		}
	}
	s.light.Relight(c, lp, old.Light)
	s.recordEdit(o, lp, v)
	return true
}

// onBoundary reports whether local position lp sits on the chunk boundary
// facing d on every axis d moves along, so the neighbor in direction d
// samples it.
func onBoundary(lp, d world.Pos) bool {
	q := lp.Add(d)
	return (d.X == 0 || q.X < 0 || q.X >= world.ChunkSize) &&
		(d.Y == 0 || q.Y < 0 || q.Y >= world.ChunkSize) &&
		(d.Z == 0 || q.Z < 0 || q.Z >= world.ChunkSize)
}

func (s *System) recordEdit(o, lp world.Pos, v voxel.Voxel) {
	d, ok := s.edits[o]
	if !ok {
		p := wire.NewDelta(o)
		d = &p
		s.edits[o] = d
	}
	d.Add(lp, v)
}

// DrainEdits returns the deltas recorded since the last call, ordered by
// chunk origin.
func (s *System) DrainEdits() []wire.Payload {
	if len(s.edits) == 0 {
		return nil
	}
	out := make([]wire.Payload, 0, len(s.edits))
	for _, d := range s.edits {
		out = append(out, *d)
	}
	clear(s.edits)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Origin, out[j].Origin
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return out
}

// falloff is the edit weight at distance d from the center.
func falloff(radius, strength, d float32) float32 {
	return max(0, radius-d) * strength
}

// Break digs around center. Isosurface cells move toward void by the
// falloff weight; block shapes are removed where the weight reaches 1.
// It returns the number of voxels changed.
func (s *System) Break(center world.Pos, radius, strength float32) int {
	defer profiling.Track("chunksys.Break")()
	r := int(math.Ceil(float64(radius)))
	n := 0
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				off := world.Pos{X: dx, Y: dy, Z: dz}
				w := falloff(radius, strength, off.Vec3().Len())
				if w <= 0 {
					continue
				}
				changed := s.mutate(center.Add(off), func(v *voxel.Voxel) {
					if v.Shape != voxel.Isosurface {
						if w >= 1 {
							*v = voxel.Voxel{}
						}
						return
					}
					v.SetIsovalue(v.Isovalue() + w)
					if w >= 1 && !v.IsSolid() {
						v.ID = voxel.Air
					}
				})
				if changed {
					n++
				}
			}
		}
	}
	if n > 0 {
		s.markTouched(s.light.Propagate())
	}
	return n
}

// Place adds material around center. Isosurface placement fills a sphere by
// the falloff weight; block shapes fill a cube and are only written where
// the weight reaches 1. Material and shape are assigned at full-strength
// cells. Block placement that would overlap the viewer fails with
// ErrObstructed and changes nothing.
func (s *System) Place(center world.Pos, radius, strength float32, material uint16, shape voxel.Shape) (int, error) {
	defer profiling.Track("chunksys.Place")()
	r := int(math.Ceil(float64(radius)))
	blocky := shape != voxel.Isosurface

	type target struct {
		p world.Pos
		w float32
	}
	var targets []target
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				off := world.Pos{X: dx, Y: dy, Z: dz}
				var d float32
				if blocky {
					d = float32(max(abs(dx), abs(dy), abs(dz)))
				} else {
					d = off.Vec3().Len()
				}
				w := falloff(radius, strength, d)
				if w <= 0 || (blocky && w < 1) {
					continue
				}
				targets = append(targets, target{center.Add(off), w})
			}
		}
	}

	if blocky && s.hasViewer {
		body := physics.BodyBox(s.viewer, viewerHalfWidth, viewerHeight)
		for _, t := range targets {
			if physics.CellBox(t.p).Intersects(body) {
				return 0, ErrObstructed
			}
		}
	}

	n := 0
	for _, t := range targets {
		w := t.w
		changed := s.mutate(t.p, func(v *voxel.Voxel) {
			if blocky {
				*v = voxel.New(material, shape, -1)
				return
			}
			if v.Shape != voxel.Isosurface {
				return
			}
			wasSolid := v.IsSolid()
			v.SetIsovalue(v.Isovalue() - w)
			if w >= 1 || (!wasSolid && v.IsSolid() && v.IsNil()) {
				v.ID = material
			}
		})
		if changed {
			n++
		}
	}
	if n > 0 {
		s.markTouched(s.light.Propagate())
	}
	return n, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Snapshot captures the loaded chunk at origin for the wire.
func (s *System) Snapshot(origin world.Pos) (wire.Payload, error) {
	c, ok := s.chunks[origin]
	if !ok {
		return wire.Payload{}, ErrNotLoaded
	}
	return wire.Snapshot(c), nil
}

// ApplyPayload replays a snapshot or delta into the loaded chunk it names,
// relights the changed cells and marks dirty as an edit would. Applied
// payloads are not recorded as local edits.
func (s *System) ApplyPayload(p wire.Payload) error {
	c, ok := s.chunks[p.Origin]
	if !ok {
		return ErrNotLoaded
	}
	changed, err := wire.Apply(c, p)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}
	c.SetEdited(true)
	s.MarkDirty(p.Origin)
	for _, lp := range changed {
		for i := 0; i < world.NumNeighbors; i++ {
			if onBoundary(lp, world.Dir(i)) {
				s.MarkDirty(p.Origin.Add(world.Dir(i).Mul(world.ChunkSize)))
			}
		}
		s.light.Relight(c, lp, c.Voxel(lp).Light)
	}
	s.markTouched(s.light.Propagate())
	return nil
}
