// Package lighting floods four independent light channels through chunks.
//
// Light spreads one level dimmer per face step and never enters an opaque
// cube. Direct skylight is the one exception: a sky level of 15 travels
// straight down without losing strength, which is how open columns stay at
// full brightness across chunk boundaries.
package lighting

import (
	"voxcore/internal/profiling"
	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

type entry struct {
	chunk   *world.Chunk
	index   int
	channel voxel.Channel
	level   uint8 // removal entries: the level the cell held before it was cleared
}

// Propagator owns the add and removal queues. It is not safe for concurrent
// use; the chunk system drives it from its own goroutine.
type Propagator struct {
	add     []entry
	remove  []entry
	touched map[*world.Chunk]struct{}
}

// NewPropagator returns an idle propagator.
func NewPropagator() *Propagator {
	return &Propagator{touched: make(map[*world.Chunk]struct{})}
}

// Pending reports whether any queued work remains.
func (p *Propagator) Pending() bool {
	return len(p.add) > 0 || len(p.remove) > 0
}

func (p *Propagator) setLevel(c *world.Chunk, i int, ch voxel.Channel, level uint8) {
	v := c.VoxelAt(i)
	v.Light = v.Light.With(ch, level)
	c.SetVoxelAt(i, v)
	p.touched[c] = struct{}{}
}

func level(c *world.Chunk, i int, ch voxel.Channel) uint8 {
	return c.VoxelAt(i).Light.Get(ch)
}

// Enqueue schedules the cell at lp to spread its current light on channel ch.
func (p *Propagator) Enqueue(c *world.Chunk, lp world.Pos, ch voxel.Channel) {
	p.add = append(p.add, entry{chunk: c, index: world.LocalIndex(lp), channel: ch})
}

// AddEmitter raises the cell at lp to at least light on every channel and
// schedules it to spread.
func (p *Propagator) AddEmitter(c *world.Chunk, lp world.Pos, light voxel.Light) {
	i := world.LocalIndex(lp)
	for ch := voxel.Channel(0); ch < voxel.NumChannels; ch++ {
		l := light.Get(ch)
		if l == 0 {
			continue
		}
		if level(c, i, ch) < l {
			p.setLevel(c, i, ch, l)
		}
		p.add = append(p.add, entry{chunk: c, index: i, channel: ch, level: l})
	}
}

// SeedEmitters adds every light-emitting voxel in the chunk.
func (p *Propagator) SeedEmitters(c *world.Chunk) {
	for i := 0; i < world.ChunkVolume; i++ {
		if e := c.VoxelAt(i).Emission(); e != 0 {
			p.AddEmitter(c, world.IndexToLocal(i), e)
		}
	}
}

// SeedSky scans each column from the top. Cells get full skylight down to the
// first opaque cube. A column whose cell above (in a linked, lit chunk) is not
// fully lit is left dark; light from that chunk reaches it through the BFS.
// An unloaded or unlit chunk above counts as open sky. Where the chunk now
// shadows a fully lit column below, that light is removed. c is marked lit.
func (p *Propagator) SeedSky(c *world.Chunk) {
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			if owner, lp, ok := c.Resolve(world.Pos{X: x, Y: world.ChunkSize, Z: z}); ok && owner.Lit() && owner.Voxel(lp).Light.Sky() < voxel.MaxLight {
				p.unshadow(c, x, z)
				continue
			}
			for y := world.ChunkSize - 1; y >= 0; y-- {
				i := world.LocalIndex(world.Pos{X: x, Y: y, Z: z})
				if c.VoxelAt(i).IsOpaqueCube() {
					break
				}
				if level(c, i, voxel.Sky) < voxel.MaxLight {
					p.setLevel(c, i, voxel.Sky, voxel.MaxLight)
				}
				p.add = append(p.add, entry{chunk: c, index: i, channel: voxel.Sky, level: voxel.MaxLight})
			}
			p.unshadow(c, x, z)
		}
	}
	c.SetLit(true)
}

// unshadow removes full skylight from the top of the column below (x, z)
// when the bottom cell of c is no longer fully lit.
func (p *Propagator) unshadow(c *world.Chunk, x, z int) {
	if level(c, world.LocalIndex(world.Pos{X: x, Y: 0, Z: z}), voxel.Sky) == voxel.MaxLight {
		return
	}
	owner, lp, ok := c.Resolve(world.Pos{X: x, Y: -1, Z: z})
	if !ok {
		return
	}
	if level(owner, world.LocalIndex(lp), voxel.Sky) == voxel.MaxLight {
		p.RemoveLight(owner, lp, voxel.Sky)
	}
}

// PullBorders schedules every lit cell of the linked neighbors that touches
// c's faces, so light already present next door floods into c.
func (p *Propagator) PullBorders(c *world.Chunk) {
	for f := 0; f < world.NumFaces; f++ {
		n := c.Neighbor(f)
		if n == nil {
			continue
		}
		d := world.Dir(f)
		for a := 0; a < world.ChunkSize; a++ {
			for b := 0; b < world.ChunkSize; b++ {
				lp := faceCell(d, a, b)
				i := world.LocalIndex(lp)
				l := n.VoxelAt(i).Light
				for ch := voxel.Channel(0); ch < voxel.NumChannels; ch++ {
					if l.Get(ch) > 1 {
						p.add = append(p.add, entry{chunk: n, index: i, channel: ch})
					}
				}
			}
		}
	}
}

// faceCell returns the cell (a, b) on the face of the neighbor in direction
// d that touches the center chunk.
func faceCell(d world.Pos, a, b int) world.Pos {
	edge := func(v int) int {
		if v > 0 {
			return 0
		}
		return world.ChunkSize - 1
	}
	switch {
	case d.X != 0:
		return world.Pos{X: edge(d.X), Y: a, Z: b}
	case d.Y != 0:
		return world.Pos{X: a, Y: edge(d.Y), Z: b}
	}
	return world.Pos{X: a, Y: b, Z: edge(d.Z)}
}

// ClearOccluded removes light held by non-emitting opaque cubes in c. Such
// light is left behind when decoration writes blocks into lit cells.
func (p *Propagator) ClearOccluded(c *world.Chunk) {
	for i := 0; i < world.ChunkVolume; i++ {
		v := c.VoxelAt(i)
		if v.Light == 0 || !v.IsOpaqueCube() || v.Emission() != 0 {
			continue
		}
		lp := world.IndexToLocal(i)
		for ch := voxel.Channel(0); ch < voxel.NumChannels; ch++ {
			p.RemoveLight(c, lp, ch)
		}
	}
}

// RemoveLight clears channel ch at lp and schedules a dark flood from it.
func (p *Propagator) RemoveLight(c *world.Chunk, lp world.Pos, ch voxel.Channel) {
	i := world.LocalIndex(lp)
	old := level(c, i, ch)
	if old == 0 {
		return
	}
	p.setLevel(c, i, ch, 0)
	p.remove = append(p.remove, entry{chunk: c, index: i, channel: ch, level: old})
}

// Relight updates light after the voxel at lp changed. prev is the light the
// cell held before the edit: it is removed, then neighbors re-flood into the
// cell unless it is now opaque, and its own emission is restored.
func (p *Propagator) Relight(c *world.Chunk, lp world.Pos, prev voxel.Light) {
	cur := c.Voxel(lp)
	cur.Light = prev
	c.SetVoxel(lp, cur)
	for ch := voxel.Channel(0); ch < voxel.NumChannels; ch++ {
		p.RemoveLight(c, lp, ch)
	}
	v := c.Voxel(lp)
	if !v.IsOpaqueCube() {
		for f := 0; f < world.NumFaces; f++ {
			owner, nlp, ok := c.Resolve(lp.Add(world.Dir(f)))
			if !ok {
				continue
			}
			l := owner.Voxel(nlp).Light
			for ch := voxel.Channel(0); ch < voxel.NumChannels; ch++ {
				if l.Get(ch) > 0 {
					p.Enqueue(owner, nlp, ch)
				}
			}
		}
		if lp.Y == world.ChunkSize-1 {
			if above, _, ok := c.Resolve(lp.Add(world.Pos{Y: 1})); !ok || !above.Lit() {
				// Open sky above an unloaded or unlit chunk.
				p.AddEmitter(c, lp, voxel.MakeLight(voxel.MaxLight, 0, 0, 0))
			}
		}
	}
	if e := v.Emission(); e != 0 {
		p.AddEmitter(c, lp, e)
	}
}

// Propagate runs the removal queue and then the add queue to a fixpoint. It
// returns every chunk whose light changed since the last call.
func (p *Propagator) Propagate() []*world.Chunk {
	defer profiling.Track("lighting.Propagate")()

	for len(p.remove) > 0 {
		e := p.remove[0]
		p.remove = p.remove[1:]
		p.darken(e)
	}
	for len(p.add) > 0 {
		e := p.add[0]
		p.add = p.add[1:]
		p.spread(e)
	}
	p.add, p.remove = p.add[:0], p.remove[:0]

	out := make([]*world.Chunk, 0, len(p.touched))
	for c := range p.touched {
		out = append(out, c)
	}
	clear(p.touched)
	return out
}

// next returns the level a neighbor receives from a cell at lvl.
func next(ch voxel.Channel, face int, lvl uint8) uint8 {
	if ch == voxel.Sky && face == world.DirNegY && lvl == voxel.MaxLight {
		return voxel.MaxLight
	}
	return lvl - 1
}

func (p *Propagator) spread(e entry) {
	lvl := level(e.chunk, e.index, e.channel)
	if lvl <= 1 {
		return
	}
	lp := world.IndexToLocal(e.index)
	for f := 0; f < world.NumFaces; f++ {
		owner, nlp, ok := e.chunk.Resolve(lp.Add(world.Dir(f)))
		if !ok {
			continue
		}
		ni := world.LocalIndex(nlp)
		if owner.VoxelAt(ni).IsOpaqueCube() {
			continue
		}
		want := next(e.channel, f, lvl)
		if level(owner, ni, e.channel) < want {
			p.setLevel(owner, ni, e.channel, want)
			p.add = append(p.add, entry{chunk: owner, index: ni, channel: e.channel, level: want})
		}
	}
}

// darken clears neighbors that were lit by the removed cell and re-seeds the
// ones lit from elsewhere.
func (p *Propagator) darken(e entry) {
	lp := world.IndexToLocal(e.index)
	for f := 0; f < world.NumFaces; f++ {
		owner, nlp, ok := e.chunk.Resolve(lp.Add(world.Dir(f)))
		if !ok {
			continue
		}
		ni := world.LocalIndex(nlp)
		nl := level(owner, ni, e.channel)
		if nl == 0 {
			continue
		}
		fedByRemoved := nl < e.level ||
			(e.channel == voxel.Sky && f == world.DirNegY && e.level == voxel.MaxLight && nl == voxel.MaxLight)
		if !fedByRemoved {
			p.add = append(p.add, entry{chunk: owner, index: ni, channel: e.channel})
			continue
		}
		p.setLevel(owner, ni, e.channel, 0)
		p.remove = append(p.remove, entry{chunk: owner, index: ni, channel: e.channel, level: nl})
		if em := owner.VoxelAt(ni).Emission().Get(e.channel); em > 0 {
			p.AddEmitter(owner, nlp, voxel.Light(0).With(e.channel, em))
		}
	}
}
