package main

import (
	"image/color"
	"testing"

	"voxcore/internal/voxel"
	"voxcore/internal/world"
)

func TestRenderFlatIsUniformGrass(t *testing.T) {
	gen := world.NewFlatGenerator(8)
	img, err := renderTopDown(gen, region{minX: -1, minZ: -1, size: 2, top: 1, bottom: -1})
	if err != nil {
		t.Fatal(err)
	}
	want := shade(voxel.GrassBlock, 7)
	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("bounds = %v", b)
	}
	for x := 0; x < b.Dx(); x++ {
		for y := 0; y < b.Dy(); y++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRenderEmptyRegionIsVoid(t *testing.T) {
	gen := world.NewFlatGenerator(-100)
	img, err := renderTopDown(gen, region{size: 1, top: 0, bottom: 0})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(3, 3); got != void {
		t.Fatalf("pixel = %v", got)
	}
}

func TestUpscale(t *testing.T) {
	img, _ := renderTopDown(world.NewFlatGenerator(8), region{size: 1, top: 0, bottom: 0})
	big := upscale(img, 3)
	if big.Bounds().Dx() != 48 {
		t.Fatalf("width = %d", big.Bounds().Dx())
	}
	if big.RGBAAt(47, 47) != img.RGBAAt(15, 15) {
		t.Fatal("nearest neighbor scaling changed colors")
	}
	label(big, "x")
	if big.RGBAAt(47, 47) == (color.RGBA{}) {
		t.Fatal("label touched the far corner")
	}
}
