package chunksys

import (
	"errors"
	"fmt"
	"sort"

	"voxcore/internal/profiling"
	"voxcore/internal/store"
	"voxcore/internal/world"
)

// DesiredSet returns the chunk origins of the box reaching h chunks along X
// and Z and v chunks along Y from the chunk at center, nearest first.
func DesiredSet(center world.Pos, h, v int) []world.Pos {
	center = world.ChunkOrigin(center)
	out := make([]world.Pos, 0, (2*h+1)*(2*h+1)*(2*v+1))
	for dx := -h; dx <= h; dx++ {
		for dz := -h; dz <= h; dz++ {
			for dy := -v; dy <= v; dy++ {
				out = append(out, center.Add(world.Pos{X: dx, Y: dy, Z: dz}.Mul(world.ChunkSize)))
			}
		}
	}
	sortByDistance(out, center)
	return out
}

func sortByDistance(origins []world.Pos, center world.Pos) {
	sort.Slice(origins, func(i, j int) bool {
		di, dj := origins[i].DistanceSq(center), origins[j].DistanceSq(center)
		if di != dj {
			return di < dj
		}
		a, b := origins[i], origins[j]
		if a.Y != b.Y {
			return a.Y > b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
}

// inRange reports whether origin lies within the given chunk radii of center.
func inRange(origin, center world.Pos, h, v int) bool {
	d := origin.Sub(center)
	dx, dy, dz := d.X/world.ChunkSize, d.Y/world.ChunkSize, d.Z/world.ChunkSize
	return abs(dx) <= h && abs(dz) <= h && abs(dy) <= v
}

// keep reports whether a chunk at origin should stay loaded: inside the
// desired box grown by one chunk on every axis. Chunks just past the load
// radius therefore linger until the viewer moves one chunk further.
func (s *System) keep(origin world.Pos) bool {
	if !s.hasCenter {
		return true
	}
	return inRange(origin, s.center, s.hRadius+1, s.vRadius+1)
}

// RequestLoad dispatches a generation task for origin. It returns false when
// the chunk is present, already loading, or the load ceiling is reached.
func (s *System) RequestLoad(origin world.Pos) bool {
	if _, ok := s.chunks[origin]; ok {
		return false
	}
	if _, ok := s.loading[origin]; ok {
		return false
	}
	if len(s.loading) >= s.maxLoads {
		return false
	}
	s.loading[origin] = struct{}{}
	s.loadPool.Submit(func() {
		s.loadResults <- s.generate(origin)
	})
	return true
}

// generate runs on a load worker. The chunk it builds is not shared until
// the driver receives the result.
func (s *System) generate(origin world.Pos) (res loadResult) {
	defer profiling.Track("chunksys.generate")()
	res.origin = origin
	defer func() {
		if r := recover(); r != nil {
			res.chunk = nil
			res.err = fmt.Errorf("chunksys: generate %v: %v", origin, r)
		}
	}()

	c := world.NewChunk(origin)
	if s.persist != nil {
		err := s.persist.Load(c)
		if err == nil {
			res.chunk, res.restored = c, true
			return res
		}
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Printf("restore %v: %v; regenerating", origin, err)
			c = world.NewChunk(origin)
		}
	}
	if err := s.gen.Generate(c); err != nil {
		res.err = fmt.Errorf("chunksys: generate %v: %w", origin, err)
		return res
	}
	res.chunk = c
	return res
}

// PollLoads installs every finished load without blocking and returns how
// many chunks were inserted. Failed loads are dropped and will be requested
// again while still desired.
func (s *System) PollLoads() int {
	n := 0
	for {
		select {
		case r := <-s.loadResults:
			delete(s.loading, r.origin)
			if r.err != nil {
				s.stats.LoadFailures++
				s.logger.Printf("load failed: %v", r.err)
				continue
			}
			if !s.keep(r.origin) {
				continue
			}
			if r.restored {
				s.restored[r.origin] = struct{}{}
				s.stats.Restored++
			}
			if s.OnLoadComplete(r.chunk) {
				n++
			}
		default:
			return n
		}
	}
}

// OnLoadComplete inserts c, links it with every loaded neighbor and
// populates whichever of c and its neighbors just gained a complete
// neighborhood. It returns false if a chunk already occupies c's origin.
func (s *System) OnLoadComplete(c *world.Chunk) bool {
	defer profiling.Track("chunksys.OnLoadComplete")()
	o := c.Origin()
	delete(s.loading, o)
	if _, ok := s.chunks[o]; ok {
		return false
	}
	s.chunks[o] = c
	for i := 0; i < world.NumNeighbors; i++ {
		if n, ok := s.chunks[o.Add(world.Dir(i).Mul(world.ChunkSize))]; ok {
			c.LinkNeighbor(i, n)
		}
	}
	s.MarkDirty(o)

	s.light.SeedSky(c)
	s.light.SeedEmitters(c)
	s.light.PullBorders(c)
	s.markTouched(s.light.Propagate())

	s.populate(c)
	for i := 0; i < world.NumNeighbors; i++ {
		if n := c.Neighbor(i); n != nil {
			s.populate(n)
		}
	}
	return true
}

// populate runs decoration once c's 26 neighbors are linked, repairs the
// light it disturbed and marks the chunk and its neighbors dirty. Restored
// chunks already carry their decoration. Skylight does not wait for this:
// OnLoadComplete seeds it on insertion.
func (s *System) populate(c *world.Chunk) {
	if c.Populated() || !c.IsNeighborsComplete() {
		return
	}
	o := c.Origin()
	c.SetPopulated(true)
	s.stats.Populated++

	if _, ok := s.restored[o]; ok {
		delete(s.restored, o)
	} else {
		s.gen.Populate(c)
		s.light.ClearOccluded(c)
		for i := 0; i < world.NumNeighbors; i++ {
			s.light.ClearOccluded(c.Neighbor(i))
		}
		s.light.SeedEmitters(c)
		s.markTouched(s.light.Propagate())
	}

	s.MarkDirty(o)
	for i := 0; i < world.NumNeighbors; i++ {
		s.MarkDirty(c.Neighbor(i).Origin())
	}
}

func (s *System) markTouched(touched []*world.Chunk) {
	for _, c := range touched {
		s.MarkDirty(c.Origin())
	}
}

// Despawn unlinks the chunk at origin from its neighbors, removes it,
// releases its mesh handle and saves it if it was edited.
func (s *System) Despawn(origin world.Pos) {
	c, ok := s.chunks[origin]
	if !ok {
		return
	}
	c.UnlinkAll()
	delete(s.chunks, origin)
	delete(s.dirty, origin)
	delete(s.restored, origin)
	if h := c.SwapHandle(nil); h != nil {
		s.sink.Release(origin, h)
	}
	s.save(c)
	s.stats.Despawned++
}
