// Package wire defines the shape of chunk payloads exchanged with clients and
// the store: full snapshots and sparse edit deltas, both a list of
// (local index, material, shape, isovalue) tuples.
package wire

import (
	"errors"
	"fmt"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

var (
	ErrShortPayload = errors.New("wire: short payload")
	ErrUnknownKind  = errors.New("wire: unknown payload kind")
	ErrBadTuple     = errors.New("wire: invalid tuple")
)

// Kind tells a full snapshot from an incremental delta.
type Kind uint8

const (
	KindSnapshot Kind = iota + 1
	KindDelta
)

func (k Kind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindDelta:
		return "delta"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Tuple is one voxel on the wire. Isovalue is the encoded byte; light is not
// transmitted, receivers recompute it.
type Tuple struct {
	Index    uint16
	Material uint16
	Shape    voxel.Shape
	Isovalue uint8
}

// TupleOf captures the voxel at local index i.
func TupleOf(i int, v voxel.Voxel) Tuple {
	return Tuple{Index: uint16(i), Material: v.ID, Shape: v.Shape, Isovalue: v.RawIsovalue()}
}

// Voxel rebuilds the voxel with the given light.
func (t Tuple) Voxel(light voxel.Light) voxel.Voxel {
	v := voxel.Voxel{ID: t.Material, Shape: t.Shape, Light: light}
	v.SetRawIsovalue(t.Isovalue)
	return v
}

// Payload is a chunk snapshot or delta keyed by chunk origin.
type Payload struct {
	Kind   Kind
	Origin world.Pos
	Tuples []Tuple
}

// Snapshot captures every voxel of c.
func Snapshot(c *world.Chunk) Payload {
	p := Payload{Kind: KindSnapshot, Origin: c.Origin(), Tuples: make([]Tuple, world.ChunkVolume)}
	for i := range p.Tuples {
		p.Tuples[i] = TupleOf(i, c.VoxelAt(i))
	}
	return p
}

// NewDelta starts an empty delta for the chunk at origin.
func NewDelta(origin world.Pos) Payload {
	return Payload{Kind: KindDelta, Origin: origin}
}

// Add appends the voxel at local position lp.
func (p *Payload) Add(lp world.Pos, v voxel.Voxel) {
	p.Tuples = append(p.Tuples, TupleOf(world.LocalIndex(lp), v))
}

// Validate checks the kind, origin and every tuple.
func (p Payload) Validate() error {
	if p.Kind != KindSnapshot && p.Kind != KindDelta {
		return fmt.Errorf("%w: %d", ErrUnknownKind, p.Kind)
	}
	if !world.IsChunkPos(p.Origin) {
		return fmt.Errorf("%w: origin %v is not a chunk position", ErrBadTuple, p.Origin)
	}
	if p.Kind == KindSnapshot && len(p.Tuples) != world.ChunkVolume {
		return fmt.Errorf("%w: snapshot has %d tuples", ErrBadTuple, len(p.Tuples))
	}
	for i, t := range p.Tuples {
		if int(t.Index) >= world.ChunkVolume {
			return fmt.Errorf("%w: tuple %d index %d", ErrBadTuple, i, t.Index)
		}
		if !t.Shape.Valid() {
			return fmt.Errorf("%w: tuple %d shape %d", ErrBadTuple, i, t.Shape)
		}
	}
	return nil
}

// Apply replays the payload into c and returns the local positions it
// changed. Light already in the chunk is kept. Dirty marking is the caller's
// job.
func Apply(c *world.Chunk, p Payload) ([]world.Pos, error) {
	if p.Origin != c.Origin() {
		return nil, fmt.Errorf("wire: payload for %v applied to chunk %v", p.Origin, c.Origin())
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var changed []world.Pos
	for _, t := range p.Tuples {
		i := int(t.Index)
		old := c.VoxelAt(i)
		v := t.Voxel(old.Light)
		if v == old {
			continue
		}
		c.SetVoxelAt(i, v)
		changed = append(changed, world.IndexToLocal(i))
	}
	return changed, nil
}
