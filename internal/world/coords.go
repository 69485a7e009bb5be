package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ChunkSize is the edge length of a chunk. Must stay a power of two:
	// addressing relies on masks and shifts.
	ChunkSize   = 16
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize

	localMask = ChunkSize - 1
)

// Pos is an integer position. Depending on context it is a world voxel
// position, a chunk origin or a position local to a chunk.
type Pos struct {
	X, Y, Z int
}

func (p Pos) Add(q Pos) Pos { return Pos{p.X + q.X, p.Y + q.Y, p.Z + q.Z} }
func (p Pos) Sub(q Pos) Pos { return Pos{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }
func (p Pos) Mul(k int) Pos { return Pos{p.X * k, p.Y * k, p.Z * k} }

// DistanceSq returns the squared euclidean distance between p and q.
func (p Pos) DistanceSq(q Pos) int {
	d := p.Sub(q)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// Vec3 converts p to a float vector.
func (p Pos) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// PosFromVec3 floors a world-space point to the voxel containing it.
func PosFromVec3(v mgl32.Vec3) Pos {
	return Pos{
		int(math.Floor(float64(v.X()))),
		int(math.Floor(float64(v.Y()))),
		int(math.Floor(float64(v.Z()))),
	}
}

// ChunkOrigin floors each axis to the lower multiple of ChunkSize.
// Masking is arithmetic floor on two's complement, so negatives are handled.
func ChunkOrigin(p Pos) Pos {
	return Pos{p.X &^ localMask, p.Y &^ localMask, p.Z &^ localMask}
}

// LocalPos returns p's position inside its chunk, in [0,16) per axis.
func LocalPos(p Pos) Pos {
	return Pos{p.X & localMask, p.Y & localMask, p.Z & localMask}
}

// LocalIndex packs a local position as x<<8 | y<<4 | z.
// It panics on positions outside the chunk; route world positions through
// LocalPos first.
func LocalIndex(lp Pos) int {
	if !IsLocalPos(lp) {
		panic(fmt.Sprintf("world: local position %v out of range", lp))
	}
	return lp.X<<8 | lp.Y<<4 | lp.Z
}

// IndexToLocal is the inverse of LocalIndex.
func IndexToLocal(i int) Pos {
	if i < 0 || i >= ChunkVolume {
		panic(fmt.Sprintf("world: local index %d out of range", i))
	}
	return Pos{i >> 8 & localMask, i >> 4 & localMask, i & localMask}
}

// IsChunkPos reports whether p is a valid chunk origin.
func IsChunkPos(p Pos) bool {
	return p.X&localMask == 0 && p.Y&localMask == 0 && p.Z&localMask == 0
}

// IsLocalPos reports whether every axis of p lies in [0,16).
func IsLocalPos(p Pos) bool {
	return uint(p.X) < ChunkSize && uint(p.Y) < ChunkSize && uint(p.Z) < ChunkSize
}
