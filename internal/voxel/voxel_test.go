package voxel

import (
	"math"
	"testing"

	"voxcore/internal/config"
)

func TestIsovalueRoundTrip(t *testing.T) {
	for i := 0; i <= 2000; i++ {
		f := float32(i)/1000 - 1
		got := DecodeIsovalue(EncodeIsovalue(f))
		if d := math.Abs(float64(got - f)); d > 1.0/255+1e-6 {
			t.Fatalf("isovalue %f decoded to %f (err %f)", f, got, d)
		}
	}
}

func TestIsovalueClamps(t *testing.T) {
	if b := EncodeIsovalue(-7); b != 0 {
		t.Errorf("encode(-7) = %d, want 0", b)
	}
	if b := EncodeIsovalue(3); b != 255 {
		t.Errorf("encode(3) = %d, want 255", b)
	}
}

func TestZeroVoxelIsAir(t *testing.T) {
	var v Voxel
	if !v.IsNil() {
		t.Error("zero voxel should be nil")
	}
	if v.Isovalue() != 1 {
		t.Errorf("zero voxel isovalue = %f, want 1", v.Isovalue())
	}
	if v.IsSolid() || !v.IsIsoEmpty() {
		t.Error("zero voxel should be on the void side")
	}
	if v.RawIsovalue() != 255 {
		t.Errorf("raw isovalue = %d, want 255", v.RawIsovalue())
	}
}

func TestBlockShapesHaveZeroIsovalue(t *testing.T) {
	v := New(Stone, Cube, -1)
	if v.Isovalue() != 0 {
		t.Errorf("cube isovalue = %f, want 0", v.Isovalue())
	}
	if v.IsSolid() {
		t.Error("cube should not take part in isosurface sign logic")
	}
	if !v.IsOpaqueCube() {
		t.Error("stone cube should be opaque")
	}
	if New(Air, Cube, 0).IsOpaqueCube() {
		t.Error("nil cube must not be opaque")
	}
}

func TestForceBlocky(t *testing.T) {
	defer config.SetForceBlocky(false)
	v := New(Stone, Isosurface, -1)
	if v.IsCube() {
		t.Fatal("isosurface voxel should not be a cube")
	}
	config.SetForceBlocky(true)
	if !v.IsCube() || !v.IsOpaqueCube() {
		t.Fatal("force blocky should make every voxel a cube")
	}
}

func TestLightChannelsIndependent(t *testing.T) {
	l := MakeLight(15, 3, 7, 0)
	if l.Sky() != 15 || l.Red() != 3 || l.Green() != 7 || l.Blue() != 0 {
		t.Fatalf("unexpected channels: %d %d %d %d", l.Sky(), l.Red(), l.Green(), l.Blue())
	}
	l = l.With(Green, 2)
	if l.Sky() != 15 || l.Red() != 3 || l.Green() != 2 || l.Blue() != 0 {
		t.Fatalf("setting green touched another channel: %016b", l)
	}
	if l.With(Blue, 99).Blue() != MaxLight {
		t.Error("levels above 15 should clamp")
	}
}

func TestParseShape(t *testing.T) {
	for s := Isosurface; s < numShapes; s++ {
		got, ok := ParseShape(s.String())
		if !ok || got != s {
			t.Errorf("ParseShape(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseShape("sphere"); ok {
		t.Error("unknown shape should not parse")
	}
}

func TestMaterialTable(t *testing.T) {
	if !New(Water, Isosurface, 1).IsLiquid() {
		t.Error("water should be liquid")
	}
	if New(Glowstone, Cube, 0).Emission().Red() == 0 {
		t.Error("glowstone should emit red light")
	}
	if Lookup(9999).Name != "unknown" {
		t.Error("unknown ids should map to the unknown material")
	}
}
