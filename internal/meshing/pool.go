package meshing

import (
	"fmt"
	"sync/atomic"

	"github.com/alitto/pond/v2"

	"voxcore/internal/world"
)

// MeshJob represents a meshing job request
type MeshJob struct {
	Origin world.Pos
	// Volume must not be shared with the driver; normally a Neighborhood copy.
	Volume Volume
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Origin world.Pos
	Mesh   *ChunkMesh
	Err    error
}

// WorkerPool runs mesh jobs on a bounded pond pool. A job counts against the
// limit until its result has been taken with TryResult, so the result channel
// never fills up and workers never block on it.
type WorkerPool struct {
	pool    pond.Pool
	results chan MeshResult
	limit   int
	pending atomic.Int64
}

// NewWorkerPool creates a pool running at most workers jobs at a time.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		pool:    pond.NewPool(workers),
		results: make(chan MeshResult, workers),
		limit:   workers,
	}
}

// SubmitJob submits a mesh generation job to the pool.
// Returns false if the pool is at its limit.
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	if p.pending.Load() >= int64(p.limit) {
		return false
	}
	p.pending.Add(1)
	p.pool.Submit(func() {
		p.results <- runJob(job)
	})
	return true
}

func runJob(job MeshJob) (res MeshResult) {
	res.Origin = job.Origin
	defer func() {
		if r := recover(); r != nil {
			res.Mesh = nil
			res.Err = fmt.Errorf("meshing: chunk %v: %v", job.Origin, r)
		}
	}()
	res.Mesh = Build(job.Origin, job.Volume)
	return res
}

// TryResult returns a finished result without blocking.
func (p *WorkerPool) TryResult() (MeshResult, bool) {
	select {
	case r := <-p.results:
		p.pending.Add(-1)
		return r, true
	default:
		return MeshResult{}, false
	}
}

// InFlight returns the number of jobs submitted whose results were not yet taken.
func (p *WorkerPool) InFlight() int {
	return int(p.pending.Load())
}

// Limit returns the concurrency ceiling.
func (p *WorkerPool) Limit() int {
	return p.limit
}

// Shutdown waits for running jobs and stops the pool. Unclaimed results are dropped.
func (p *WorkerPool) Shutdown() {
	p.pool.StopAndWait()
}
