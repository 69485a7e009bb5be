// Package chunksys owns the chunk map and drives the load and remesh
// pipelines around a moving viewer.
//
// Every exported method must be called from one driver goroutine. Workers
// only read chunk contents or fill fresh chunks; the map, the neighbor links
// and the dirty bookkeeping are touched by the driver alone.
package chunksys

import (
	"errors"
	"io"
	"log"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/config"
	"voxcore/internal/lighting"
	"voxcore/internal/meshing"
	"voxcore/internal/wire"
	"voxcore/internal/world"
)

var (
	ErrNotLoaded  = errors.New("chunksys: chunk not loaded")
	ErrObstructed = errors.New("chunksys: placement overlaps the viewer")
)

// MeshSink receives finished meshes. Upload returns the consumer's handle
// for the mesh; Release is called with the previous handle once it has been
// replaced, and with the current one when the chunk despawns.
type MeshSink interface {
	Upload(origin world.Pos, mesh *meshing.ChunkMesh) world.Handle
	Release(origin world.Pos, h world.Handle)
}

// Persister saves edited chunks and restores them on load. Load must return
// store.ErrNotFound when nothing was saved. It runs on load workers.
type Persister interface {
	Save(c *world.Chunk) error
	Load(c *world.Chunk) error
}

// Options configures a System.
type Options struct {
	Generator world.Generator
	Sink      MeshSink
	Store     Persister // optional
	Logger    *log.Logger

	HorizontalRadius    int
	VerticalRadius      int
	MaxConcurrentLoads  int
	MaxConcurrentMeshes int
}

// OptionsFromConfig copies radii and ceilings from cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		HorizontalRadius:    cfg.HorizontalRadius,
		VerticalRadius:      cfg.VerticalRadius,
		MaxConcurrentLoads:  cfg.MaxConcurrentLoads,
		MaxConcurrentMeshes: cfg.MaxConcurrentMeshes,
	}
}

// Stats is a point-in-time summary for logging.
type Stats struct {
	Loaded       int
	Loading      int
	Dirty        int
	Meshing      int
	Populated    int
	Restored     int
	MeshesBuilt  int
	MeshBytes    uint64
	LoadFailures int
	MeshFailures int
	Despawned    int
}

type loadResult struct {
	origin   world.Pos
	chunk    *world.Chunk
	restored bool
	err      error
}

// System is the chunk orchestrator.
type System struct {
	gen     world.Generator
	sink    MeshSink
	persist Persister
	logger  *log.Logger

	hRadius, vRadius int

	chunks map[world.Pos]*world.Chunk
	dirty  map[world.Pos]struct{}
	// meshing maps an in-flight origin to whether it was dirtied again
	// while its mesh was being built.
	meshing  map[world.Pos]bool
	loading  map[world.Pos]struct{}
	restored map[world.Pos]struct{}

	maxLoads    int
	loadPool    pond.Pool
	loadResults chan loadResult
	meshPool    *meshing.WorkerPool

	light *lighting.Propagator
	edits map[world.Pos]*wire.Payload

	center    world.Pos
	hasCenter bool
	viewer    mgl32.Vec3
	hasViewer bool

	stats Stats
}

// New creates a System. Generator and Sink are required.
func New(opts Options) *System {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.MaxConcurrentLoads < 1 {
		opts.MaxConcurrentLoads = 1
	}
	if opts.MaxConcurrentMeshes < 1 {
		opts.MaxConcurrentMeshes = 1
	}
	return &System{
		gen:         opts.Generator,
		sink:        opts.Sink,
		persist:     opts.Store,
		logger:      opts.Logger,
		hRadius:     opts.HorizontalRadius,
		vRadius:     opts.VerticalRadius,
		chunks:      make(map[world.Pos]*world.Chunk),
		dirty:       make(map[world.Pos]struct{}),
		meshing:     make(map[world.Pos]bool),
		loading:     make(map[world.Pos]struct{}),
		restored:    make(map[world.Pos]struct{}),
		maxLoads:    opts.MaxConcurrentLoads,
		loadPool:    pond.NewPool(opts.MaxConcurrentLoads),
		loadResults: make(chan loadResult, opts.MaxConcurrentLoads),
		meshPool:    meshing.NewWorkerPool(opts.MaxConcurrentMeshes),
		light:       lighting.NewPropagator(),
		edits:       make(map[world.Pos]*wire.Payload),
	}
}

// Chunk returns the loaded chunk at origin.
func (s *System) Chunk(origin world.Pos) (*world.Chunk, bool) {
	c, ok := s.chunks[origin]
	return c, ok
}

// Len returns the number of loaded chunks.
func (s *System) Len() int {
	return len(s.chunks)
}

// IsDirty reports whether origin waits for a remesh.
func (s *System) IsDirty(origin world.Pos) bool {
	_, ok := s.dirty[origin]
	return ok
}

// IsMeshing reports whether a mesh for origin is in flight.
func (s *System) IsMeshing(origin world.Pos) bool {
	_, ok := s.meshing[origin]
	return ok
}

// IsLoading reports whether a load for origin is in flight.
func (s *System) IsLoading(origin world.Pos) bool {
	_, ok := s.loading[origin]
	return ok
}

// Stats returns current counters.
func (s *System) Stats() Stats {
	st := s.stats
	st.Loaded = len(s.chunks)
	st.Loading = len(s.loading)
	st.Dirty = len(s.dirty)
	st.Meshing = len(s.meshing)
	return st
}

// Close waits for in-flight tasks, releases mesh handles and saves every
// edited chunk that is still loaded.
func (s *System) Close() {
	s.loadPool.StopAndWait()
	s.meshPool.Shutdown()
	for o, c := range s.chunks {
		if h := c.SwapHandle(nil); h != nil {
			s.sink.Release(o, h)
		}
		s.save(c)
	}
}

func (s *System) save(c *world.Chunk) {
	if s.persist == nil || !c.Edited() {
		return
	}
	if err := s.persist.Save(c); err != nil {
		s.logger.Printf("save %v: %v", c.Origin(), err)
		return
	}
	c.SetEdited(false)
}
