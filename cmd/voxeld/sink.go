package main

import (
	"voxcore/internal/meshing"
	"voxcore/internal/world"
)

// residentSink stands in for a renderer: it keeps every uploaded mesh and
// tracks how much memory they hold.
type residentSink struct {
	meshes map[world.Pos]*meshing.ChunkMesh
	bytes  uint64
	verts  int
}

func newResidentSink() *residentSink {
	return &residentSink{meshes: make(map[world.Pos]*meshing.ChunkMesh)}
}

func (r *residentSink) Upload(origin world.Pos, mesh *meshing.ChunkMesh) world.Handle {
	r.bytes += mesh.Bytes()
	r.verts += mesh.VertexCount()
	r.meshes[origin] = mesh
	return mesh
}

func (r *residentSink) Release(origin world.Pos, h world.Handle) {
	mesh, ok := h.(*meshing.ChunkMesh)
	if !ok {
		return
	}
	r.bytes -= mesh.Bytes()
	r.verts -= mesh.VertexCount()
	if r.meshes[origin] == mesh {
		delete(r.meshes, origin)
	}
}
