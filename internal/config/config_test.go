package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxcore.yaml")
	data := []byte("seed: 42\ngenerator: flat\nhorizontal_radius: 100\nmax_concurrent_meshes: 2\nviewer: [1, 2, 3]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 42 || cfg.Generator != "flat" {
		t.Errorf("unexpected seed/generator: %d %q", cfg.Seed, cfg.Generator)
	}
	if cfg.HorizontalRadius != 32 {
		t.Errorf("horizontal radius should clamp to 32, got %d", cfg.HorizontalRadius)
	}
	if cfg.MaxConcurrentMeshes != 2 {
		t.Errorf("mesh ceiling: got %d, want 2", cfg.MaxConcurrentMeshes)
	}
	if cfg.MaxConcurrentLoads != Default().MaxConcurrentLoads {
		t.Errorf("load ceiling should keep default, got %d", cfg.MaxConcurrentLoads)
	}
	if cfg.Viewer != [3]float32{1, 2, 3} {
		t.Errorf("viewer: got %v", cfg.Viewer)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("seed: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestForceBlockyToggle(t *testing.T) {
	defer SetForceBlocky(false)
	if ForceBlocky() {
		t.Fatal("force blocky should start disabled")
	}
	SetForceBlocky(true)
	if !ForceBlocky() {
		t.Fatal("force blocky should be enabled")
	}
}
