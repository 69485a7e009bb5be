package main

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

var palette = map[uint16]color.RGBA{
	voxel.Stone:          {R: 125, G: 125, B: 125, A: 255},
	voxel.Dirt:           {R: 134, G: 96, B: 67, A: 255},
	voxel.GrassBlock:     {R: 95, G: 159, B: 53, A: 255},
	voxel.Sand:           {R: 219, G: 207, B: 163, A: 255},
	voxel.Log:            {R: 102, G: 81, B: 51, A: 255},
	voxel.LeavesMaterial: {R: 48, G: 110, B: 34, A: 255},
	voxel.TallGrass:      {R: 110, G: 170, B: 70, A: 255},
	voxel.Water:          {R: 47, G: 84, B: 196, A: 255},
	voxel.Glowstone:      {R: 250, G: 220, B: 120, A: 255},
	voxel.Planks:         {R: 162, G: 130, B: 78, A: 255},
}

var void = color.RGBA{A: 255}

// region is a square of chunk columns to preview.
type region struct {
	minX, minZ int // chunk coordinates
	size       int // chunks per side
	top        int // highest chunk Y scanned
	bottom     int // lowest chunk Y scanned
}

// renderTopDown generates every chunk of the region and colors each column
// by its topmost visible voxel, shaded by height.
func renderTopDown(gen world.Generator, r region) (*image.RGBA, error) {
	w := r.size * world.ChunkSize
	img := image.NewRGBA(image.Rect(0, 0, w, w))
	for cx := 0; cx < r.size; cx++ {
		for cz := 0; cz < r.size; cz++ {
			if err := renderColumn(gen, r, cx, cz, img); err != nil {
				return nil, err
			}
		}
	}
	return img, nil
}

func renderColumn(gen world.Generator, r region, cx, cz int, img *image.RGBA) error {
	const n = world.ChunkSize
	var done [n][n]bool
	left := n * n
	for cy := r.top; cy >= r.bottom && left > 0; cy-- {
		c := world.NewChunk(world.Pos{X: (r.minX + cx) * n, Y: cy * n, Z: (r.minZ + cz) * n})
		if err := gen.Generate(c); err != nil {
			return err
		}
		for x := 0; x < n; x++ {
			for z := 0; z < n; z++ {
				if done[x][z] {
					continue
				}
				for y := n - 1; y >= 0; y-- {
					v := c.Voxel(world.Pos{X: x, Y: y, Z: z})
					if !v.IsSolid() && !v.IsLiquid() {
						continue
					}
					img.SetRGBA(cx*n+x, cz*n+z, shade(v.ID, cy*n+y))
					done[x][z] = true
					left--
					break
				}
			}
		}
	}
	for x := 0; x < n; x++ {
		for z := 0; z < n; z++ {
			if !done[x][z] {
				img.SetRGBA(cx*n+x, cz*n+z, void)
			}
		}
	}
	return nil
}

// shade darkens low terrain and brightens high terrain.
func shade(id uint16, y int) color.RGBA {
	c, ok := palette[id]
	if !ok {
		c = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	}
	f := 0.75 + float64(y)/128
	f = min(max(f, 0.4), 1.3)
	scale := func(v uint8) uint8 { return uint8(min(float64(v)*f, 255)) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: 255}
}

// upscale enlarges img by an integer factor without smoothing.
func upscale(img image.Image, factor int) *image.RGBA {
	factor = max(factor, 1)
	if factor == 1 {
		if rgba, ok := img.(*image.RGBA); ok {
			return rgba
		}
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// label writes text into the top left corner.
func label(img *image.RGBA, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 14),
	}
	d.DrawString(text)
}
