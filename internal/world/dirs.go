package world

// NumNeighbors is the size of a chunk's neighbor table: 6 faces, 12 edges, 8 corners.
const NumNeighbors = 26

// neighborDirs lists every neighbor offset in opposite pairs, so that entry
// 2k+1 is always the negation of entry 2k.
var neighborDirs = [NumNeighbors]Pos{
	// faces
	{X: -1}, {X: 1},
	{Y: -1}, {Y: 1},
	{Z: -1}, {Z: 1},
	// edges
	{X: -1, Y: -1}, {X: 1, Y: 1},
	{X: -1, Y: 1}, {X: 1, Y: -1},
	{X: -1, Z: -1}, {X: 1, Z: 1},
	{X: -1, Z: 1}, {X: 1, Z: -1},
	{Y: -1, Z: -1}, {Y: 1, Z: 1},
	{Y: -1, Z: 1}, {Y: 1, Z: -1},
	// corners
	{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1},
	{X: -1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: -1},
	{X: -1, Y: 1, Z: -1}, {X: 1, Y: -1, Z: 1},
	{X: -1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: -1},
}

// Face direction indices.
const (
	DirNegX = iota
	DirPosX
	DirNegY
	DirPosY
	DirNegZ
	DirPosZ

	NumFaces = 6
)

// dirLookup maps (dx+1)*9 + (dy+1)*3 + (dz+1) to a direction index, -1 for the center.
var dirLookup [27]int8

func init() {
	for i := range dirLookup {
		dirLookup[i] = -1
	}
	for i, d := range neighborDirs {
		dirLookup[(d.X+1)*9+(d.Y+1)*3+(d.Z+1)] = int8(i)
	}
}

// Dir returns the unit offset of neighbor direction i.
func Dir(i int) Pos {
	return neighborDirs[i]
}

// Opposite returns the direction index pointing the other way.
func Opposite(i int) int {
	return i/2*2 + (i+1)%2
}

// DirIndex returns the direction index of a unit offset, or false for the
// zero offset or anything outside {-1,0,1}³.
func DirIndex(d Pos) (int, bool) {
	if d.X < -1 || d.X > 1 || d.Y < -1 || d.Y > 1 || d.Z < -1 || d.Z > 1 {
		return 0, false
	}
	i := dirLookup[(d.X+1)*9+(d.Y+1)*3+(d.Z+1)]
	return int(i), i >= 0
}

// IsFace reports whether direction i is one of the six face directions.
func IsFace(i int) bool {
	return i < NumFaces
}
