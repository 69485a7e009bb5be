package ws

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Client message types.
const (
	TypeViewer = "viewer"
	TypeEdit   = "edit"
	TypeChunk  = "chunk"
)

// Server text message types. Chunk payloads go out as binary frames.
const (
	TypeWelcome = "welcome"
	TypeError   = "error"
)

const clientSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"enum": ["viewer", "edit", "chunk"]},
    "pos": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
    "origin": {"type": "array", "items": {"type": "integer", "multipleOf": 16}, "minItems": 3, "maxItems": 3},
    "op": {"enum": ["break", "place"]},
    "radius": {"type": "number", "exclusiveMinimum": 0, "maximum": 8},
    "strength": {"type": "number", "exclusiveMinimum": 0, "maximum": 4},
    "material": {"type": "integer", "minimum": 0, "maximum": 65535},
    "shape": {"enum": ["isosurface", "cube", "leaves", "grass",
      "slab_ymin", "slab_ymax", "slab_xmin", "slab_xmax", "slab_zmin", "slab_zmax", "fence"]}
  },
  "allOf": [
    {"if": {"properties": {"type": {"const": "viewer"}}}, "then": {"required": ["pos"]}},
    {"if": {"properties": {"type": {"const": "chunk"}}}, "then": {"required": ["origin"]}},
    {"if": {"properties": {"type": {"const": "edit"}}}, "then": {"required": ["op", "pos", "radius", "strength"]}},
    {"if": {"required": ["op"], "properties": {"op": {"const": "place"}}}, "then": {"required": ["material", "shape"]}}
  ]
}`

var schema = jsonschema.MustCompileString("client.schema.json", clientSchema)

// ClientMsg is any message a client sends.
type ClientMsg struct {
	Type     string     `json:"type"`
	Pos      [3]float32 `json:"pos"`
	Origin   [3]int     `json:"origin"`
	Op       string     `json:"op,omitempty"`
	Radius   float32    `json:"radius,omitempty"`
	Strength float32    `json:"strength,omitempty"`
	Material uint16     `json:"material,omitempty"`
	Shape    string     `json:"shape,omitempty"`
}

// WelcomeMsg is the first message on every connection.
type WelcomeMsg struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	ChunkSize int    `json:"chunk_size"`
}

// ErrorMsg reports a rejected request.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DecodeClientMsg validates raw against the client schema and decodes it.
func DecodeClientMsg(raw []byte) (ClientMsg, error) {
	var msg ClientMsg
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return msg, fmt.Errorf("decode: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return msg, fmt.Errorf("validate: %w", err)
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("decode: %w", err)
	}
	return msg, nil
}
