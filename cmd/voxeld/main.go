package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"voxcore/internal/chunksys"
	"voxcore/internal/config"
	"voxcore/internal/physics"
	"voxcore/internal/profiling"
	"voxcore/internal/store"
	"voxcore/internal/transport/ws"
	"voxcore/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to voxcore.yaml (defaults when empty)")
		listen     = flag.String("listen", "", "override the listen address")
		blocky     = flag.Bool("blocky", false, "mesh every voxel as a cube")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[voxeld] ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatalf("load config: %v", err)
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	config.SetForceBlocky(cfg.ForceBlocky || *blocky)

	opts := chunksys.OptionsFromConfig(cfg)
	opts.Generator = newGenerator(cfg)
	opts.Logger = log.New(os.Stdout, "[chunks] ", log.LstdFlags|log.Lmicroseconds)
	sink := newResidentSink()
	opts.Sink = sink

	var db *store.Store
	if cfg.StorePath != "" {
		var err error
		db, err = store.Open(cfg.StorePath, log.New(os.Stdout, "[store] ", log.LstdFlags|log.Lmicroseconds))
		if err != nil {
			logger.Fatalf("open store: %v", err)
		}
		opts.Store = db
	}

	sys := chunksys.New(opts)
	sys.SetViewer(mgl32.Vec3(cfg.Viewer))
	srv := ws.NewServer(ws.Options{EditsPerSecond: cfg.EditsPerSecond, EditBurst: cfg.EditBurst}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := make(chan struct{})
	stopped := make(chan struct{})
	closer.Bind(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)

		close(stop)
		<-stopped
		sys.Close()
		if db != nil {
			if err := db.Close(); err != nil {
				logger.Printf("close store: %v", err)
			}
			n, b := db.Stats()
			logger.Printf("saved %d chunks (%s)", n, humanize.Bytes(uint64(b)))
		}
		logger.Printf("bye")
	})

	go func() {
		logger.Printf("listening on %s", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("ListenAndServe: %v", err)
			closer.Close()
		}
	}()
	go run(cfg, sys, srv, sink, logger, stop, stopped)

	closer.Hold()
}

func newGenerator(cfg config.Config) world.Generator {
	if cfg.Generator == "flat" {
		return world.NewFlatGenerator(cfg.FlatHeight)
	}
	return world.NewNoiseGenerator(cfg.Seed)
}

// run is the driver loop. It is the only goroutine that touches sys.
func run(cfg config.Config, sys *chunksys.System, srv *ws.Server, sink *residentSink, logger *log.Logger, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	budget := time.Second / time.Duration(cfg.TickRateHz)
	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	spawned := false
	var tick uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		tick++
		start := time.Now()
		profiling.ResetFrame()

		srv.Pump(sys)
		sys.Tick(sys.Viewer())

		if !spawned {
			spawned = snapToGround(sys, logger)
		}

		if elapsed := time.Since(start); elapsed > budget {
			logger.Printf("slow tick %d took %v: %s", tick, elapsed, profiling.TopN(5))
		}
		if tick%uint64(cfg.TickRateHz*10) == 0 {
			st := sys.Stats()
			logger.Printf("chunks=%d loading=%d dirty=%d meshing=%d meshes=%d (%s, %d verts) sessions=%d",
				st.Loaded, st.Loading, st.Dirty, st.Meshing, len(sink.meshes),
				humanize.Bytes(sink.bytes), sink.verts, srv.Sessions())
		}
	}
}

// snapToGround moves the viewer onto the terrain below it once that column
// is loaded.
func snapToGround(sys *chunksys.System, logger *log.Logger) bool {
	v := sys.Viewer()
	y, ok := physics.GroundLevel(sys, v.X(), v.Z(), int(v.Y())+world.ChunkSize, 3*world.ChunkSize)
	if !ok {
		return false
	}
	v[1] = y
	sys.SetViewer(v)
	logger.Printf("spawned at %.1f %.1f %.1f", v.X(), v.Y(), v.Z())
	return true
}
