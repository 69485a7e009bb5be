package voxel

// Material ids known to the engine. Ids outside this table are treated as
// plain opaque materials with no emission.
const (
	Air uint16 = iota
	Stone
	Dirt
	GrassBlock
	Sand
	Log
	LeavesMaterial
	TallGrass
	Water
	Glowstone
	RedLamp
	Planks

	numMaterials
)

// Material describes static per-id properties.
type Material struct {
	Name    string
	Liquid  bool
	Foliage bool
	// Emission is the colored light the material gives off (sky channel unused).
	Emission Light
}

var materials = [numMaterials]Material{
	Air:            {Name: "air"},
	Stone:          {Name: "stone"},
	Dirt:           {Name: "dirt"},
	GrassBlock:     {Name: "grass_block"},
	Sand:           {Name: "sand"},
	Log:            {Name: "log"},
	LeavesMaterial: {Name: "leaves", Foliage: true},
	TallGrass:      {Name: "tall_grass", Foliage: true},
	Water:          {Name: "water", Liquid: true},
	Glowstone:      {Name: "glowstone", Emission: MakeLight(0, 15, 13, 8)},
	RedLamp:        {Name: "red_lamp", Emission: MakeLight(0, 14, 0, 0)},
	Planks:         {Name: "planks"},
}

// Lookup returns the material for id.
func Lookup(id uint16) Material {
	if id < numMaterials {
		return materials[id]
	}
	return Material{Name: "unknown"}
}

// IsLiquid reports whether the voxel's material is a liquid.
func (v Voxel) IsLiquid() bool {
	return Lookup(v.ID).Liquid
}

// Emission returns the light emitted by the voxel's material.
func (v Voxel) Emission() Light {
	return Lookup(v.ID).Emission
}
