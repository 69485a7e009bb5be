package voxel

import (
	"math"

	"voxcore/internal/config"
)

// Shape selects how a voxel is meshed.
type Shape uint8

const (
	Isosurface Shape = iota
	Cube
	Leaves
	Grass
	SlabYMin
	SlabYMax
	SlabXMin
	SlabXMax
	SlabZMin
	SlabZMax
	Fence

	numShapes
)

var shapeNames = [numShapes]string{
	"isosurface", "cube", "leaves", "grass",
	"slab_ymin", "slab_ymax", "slab_xmin", "slab_xmax", "slab_zmin", "slab_zmax",
	"fence",
}

func (s Shape) String() string {
	if s < numShapes {
		return shapeNames[s]
	}
	return "unknown"
}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	return s < numShapes
}

// ParseShape maps a shape name back to its value.
func ParseShape(name string) (Shape, bool) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), true
		}
	}
	return Isosurface, false
}

// IsSlab reports whether s is one of the six half-block shapes.
func (s Shape) IsSlab() bool {
	return s >= SlabYMin && s <= SlabZMax
}

// Voxel is the atomic cell value. The zero value is air: nil material,
// isosurface shape, no light and an isovalue of +1 (void).
type Voxel struct {
	ID    uint16
	Light Light
	Shape Shape
	// iso holds the encoded isovalue complemented, so that a zero byte decodes to +1.
	iso uint8
}

// New returns a voxel with the given material, shape and signed distance.
func New(id uint16, shape Shape, isovalue float32) Voxel {
	v := Voxel{ID: id, Shape: shape}
	v.SetIsovalue(isovalue)
	return v
}

// EncodeIsovalue packs a signed distance in [-1,1] into a byte.
func EncodeIsovalue(f float32) uint8 {
	if f < -1 {
		f = -1
	} else if f > 1 {
		f = 1
	}
	return uint8(math.Round(float64((f + 1) / 2 * 255)))
}

// DecodeIsovalue is the inverse affine map of EncodeIsovalue.
func DecodeIsovalue(b uint8) float32 {
	return float32(b)/255*2 - 1
}

// RawIsovalue returns the encoded isovalue byte regardless of shape.
func (v Voxel) RawIsovalue() uint8 {
	return ^v.iso
}

// SetRawIsovalue stores an already encoded isovalue byte.
func (v *Voxel) SetRawIsovalue(b uint8) {
	v.iso = ^b
}

// SetIsovalue stores a signed distance, clamped to [-1,1].
func (v *Voxel) SetIsovalue(f float32) {
	v.SetRawIsovalue(EncodeIsovalue(f))
}

// Isovalue returns the decoded signed distance. Block shapes have no
// distance field and always report exactly 0.
func (v Voxel) Isovalue() float32 {
	if v.Shape != Isosurface {
		return 0
	}
	return DecodeIsovalue(v.RawIsovalue())
}

// IsNil reports whether the voxel holds no material.
func (v Voxel) IsNil() bool {
	return v.ID == 0
}

// IsCube reports whether the voxel is meshed as a full block.
func (v Voxel) IsCube() bool {
	return v.Shape == Cube || config.ForceBlocky()
}

// IsOpaqueCube reports whether the voxel is a full block of real material.
// Light does not pass through it and block faces against it are culled.
func (v Voxel) IsOpaqueCube() bool {
	return v.IsCube() && !v.IsNil()
}

// IsSolid reports whether the sample lies inside the isosurface.
func (v Voxel) IsSolid() bool {
	return v.Isovalue() < 0
}

// IsIsoEmpty reports whether the sample lies on the void side of the surface.
func (v Voxel) IsIsoEmpty() bool {
	return !v.IsSolid()
}
