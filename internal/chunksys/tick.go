package chunksys

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/profiling"
	"voxcore/internal/world"
)

// TickReport counts what one Tick did.
type TickReport struct {
	Inserted   int
	Requested  int
	Despawned  int
	Dispatched int
	Meshed     int
}

// Tick advances both pipelines around the viewer: finished loads and meshes
// are installed, missing chunks are requested nearest first, chunks out of
// range are despawned and dirty chunks are dispatched for meshing.
func (s *System) Tick(viewer mgl32.Vec3) TickReport {
	defer profiling.Track("chunksys.Tick")()

	var rep TickReport
	s.SetViewer(viewer)

	rep.Inserted = s.PollLoads()
	rep.Meshed = s.PollMeshes()

	for _, o := range DesiredSet(s.center, s.hRadius, s.vRadius) {
		if len(s.loading) >= s.maxLoads {
			break
		}
		if s.RequestLoad(o) {
			rep.Requested++
		}
	}

	var far []world.Pos
	for o := range s.chunks {
		if !s.keep(o) {
			far = append(far, o)
		}
	}
	for _, o := range far {
		s.Despawn(o)
	}
	rep.Despawned = len(far)

	rep.Dispatched = s.DriveRemesh(s.center)
	return rep
}

// Viewer returns the last viewer position.
func (s *System) Viewer() mgl32.Vec3 {
	return s.viewer
}

// SetViewer moves the load center without running a tick.
func (s *System) SetViewer(viewer mgl32.Vec3) {
	s.viewer, s.hasViewer = viewer, true
	s.center, s.hasCenter = world.ChunkOrigin(world.PosFromVec3(viewer)), true
}
