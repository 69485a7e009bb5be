package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

// Layout, little-endian:
//
//	kind   u8
//	origin i32 x3
//	count  u32
//	count x (index u16, material u16, shape u8, isovalue u8)
const (
	headerSize = 1 + 3*4 + 4
	tupleSize  = 6
)

// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll calls.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	decoder, _ = zstd.NewReader(nil)
)

// Marshal writes the uncompressed binary form of p.
func Marshal(p Payload) []byte {
	buf := make([]byte, headerSize+tupleSize*len(p.Tuples))
	buf[0] = byte(p.Kind)
	binary.LittleEndian.PutUint32(buf[1:], uint32(int32(p.Origin.X)))
	binary.LittleEndian.PutUint32(buf[5:], uint32(int32(p.Origin.Y)))
	binary.LittleEndian.PutUint32(buf[9:], uint32(int32(p.Origin.Z)))
	binary.LittleEndian.PutUint32(buf[13:], uint32(len(p.Tuples)))
	off := headerSize
	for _, t := range p.Tuples {
		binary.LittleEndian.PutUint16(buf[off:], t.Index)
		binary.LittleEndian.PutUint16(buf[off+2:], t.Material)
		buf[off+4] = byte(t.Shape)
		buf[off+5] = t.Isovalue
		off += tupleSize
	}
	return buf
}

// Unmarshal parses the uncompressed binary form and validates it.
func Unmarshal(b []byte) (Payload, error) {
	var p Payload
	if len(b) < headerSize {
		return p, fmt.Errorf("%w: %d byte header", ErrShortPayload, len(b))
	}
	p.Kind = Kind(b[0])
	if p.Kind != KindSnapshot && p.Kind != KindDelta {
		return p, fmt.Errorf("%w: %d", ErrUnknownKind, b[0])
	}
	p.Origin = world.Pos{
		X: int(int32(binary.LittleEndian.Uint32(b[1:]))),
		Y: int(int32(binary.LittleEndian.Uint32(b[5:]))),
		Z: int(int32(binary.LittleEndian.Uint32(b[9:]))),
	}
	n := binary.LittleEndian.Uint32(b[13:])
	body := b[headerSize:]
	if uint64(len(body)) < uint64(n)*tupleSize {
		return p, fmt.Errorf("%w: want %d tuples, have %d bytes", ErrShortPayload, n, len(body))
	}
	p.Tuples = make([]Tuple, n)
	for i := range p.Tuples {
		off := i * tupleSize
		p.Tuples[i] = Tuple{
			Index:    binary.LittleEndian.Uint16(body[off:]),
			Material: binary.LittleEndian.Uint16(body[off+2:]),
			Shape:    voxel.Shape(body[off+4]),
			Isovalue: body[off+5],
		}
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Encode marshals and compresses p.
func Encode(p Payload) []byte {
	return encoder.EncodeAll(Marshal(p), nil)
}

// Decode decompresses and unmarshals a payload produced by Encode.
func Decode(b []byte) (Payload, error) {
	raw, err := decoder.DecodeAll(b, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("wire: decompress: %w", err)
	}
	return Unmarshal(raw)
}
