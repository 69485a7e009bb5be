package chunksys

import (
	"voxcore/internal/meshing"
	"voxcore/internal/profiling"
	"voxcore/internal/world"
)

// MarkDirty queues origin for a remesh. Absent chunks are ignored. A chunk
// whose mesh is in flight is flagged and requeued once that mesh lands.
func (s *System) MarkDirty(origin world.Pos) {
	if _, ok := s.chunks[origin]; !ok {
		return
	}
	if _, ok := s.meshing[origin]; ok {
		s.meshing[origin] = true
		return
	}
	s.dirty[origin] = struct{}{}
}

// DriveRemesh dispatches dirty chunks nearest to viewer first until the
// mesh ceiling is reached. It returns the number of jobs dispatched.
func (s *System) DriveRemesh(viewer world.Pos) int {
	if len(s.dirty) == 0 {
		return 0
	}
	defer profiling.Track("chunksys.DriveRemesh")()

	center := world.ChunkOrigin(viewer)
	origins := make([]world.Pos, 0, len(s.dirty))
	for o := range s.dirty {
		origins = append(origins, o)
	}
	sortByDistance(origins, center)

	n := 0
	for _, o := range origins {
		if s.meshPool.InFlight() >= s.meshPool.Limit() {
			break
		}
		c, ok := s.chunks[o]
		if !ok {
			delete(s.dirty, o)
			continue
		}
		if !s.meshPool.SubmitJob(meshing.MeshJob{Origin: o, Volume: c.Neighborhood()}) {
			break
		}
		delete(s.dirty, o)
		s.meshing[o] = false
		n++
	}
	return n
}

// PollMeshes hands every finished mesh to the sink without blocking and
// returns how many were installed. Meshes for despawned chunks are dropped.
func (s *System) PollMeshes() int {
	n := 0
	for {
		r, ok := s.meshPool.TryResult()
		if !ok {
			return n
		}
		redirty := s.meshing[r.Origin]
		delete(s.meshing, r.Origin)

		c, ok := s.chunks[r.Origin]
		if !ok {
			continue
		}
		if r.Err != nil {
			s.stats.MeshFailures++
			s.logger.Printf("mesh failed: %v", r.Err)
		} else {
			h := s.sink.Upload(r.Origin, r.Mesh)
			if old := c.SwapHandle(h); old != nil {
				s.sink.Release(r.Origin, old)
			}
			s.stats.MeshesBuilt++
			s.stats.MeshBytes += r.Mesh.Bytes()
			n++
		}
		if redirty {
			s.MarkDirty(r.Origin)
		}
	}
}

// MeshesInFlight returns the number of mesh jobs not yet collected.
func (s *System) MeshesInFlight() int {
	return s.meshPool.InFlight()
}
