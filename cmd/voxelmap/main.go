// Command voxelmap renders a top-down PNG of generated terrain.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"

	"voxcore/internal/config"
	"voxcore/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to voxcore.yaml (defaults when empty)")
		out        = flag.String("out", "map.png", "output file")
		size       = flag.Int("size", 16, "chunks per side")
		scale      = flag.Int("scale", 2, "pixels per voxel")
		centerX    = flag.Int("x", 0, "center chunk X")
		centerZ    = flag.Int("z", 0, "center chunk Z")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[voxelmap] ", log.LstdFlags)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatalf("load config: %v", err)
		}
	}

	var gen world.Generator
	if cfg.Generator == "flat" {
		gen = world.NewFlatGenerator(cfg.FlatHeight)
	} else {
		gen = world.NewNoiseGenerator(cfg.Seed)
	}

	r := region{
		minX:   *centerX - *size/2,
		minZ:   *centerZ - *size/2,
		size:   *size,
		top:    4,
		bottom: -2,
	}
	img, err := renderTopDown(gen, r)
	if err != nil {
		logger.Fatalf("render: %v", err)
	}
	dst := upscale(img, *scale)
	label(dst, fmt.Sprintf("%v  chunks %d..%d", gen, r.minX, r.minX+r.size-1))

	f, err := os.Create(*out)
	if err != nil {
		logger.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, dst); err != nil {
		logger.Fatalf("encode: %v", err)
	}
	logger.Printf("wrote %s (%dx%d)", *out, dst.Bounds().Dx(), dst.Bounds().Dy())
}
