package params

import (
	"bytes"
	"flag"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cbegin/thinplate-go/internal/material"
)

func TestLayoutMatchesHostRanges(t *testing.T) {
	for _, tc := range []struct {
		id       ID
		min, max float64
		def      float64
	}{
		{FrequencyIndependentDamping, 0.01, 10, 1},
		{FrequencyDependentDamping, 0.0001, 0.1, 0.0005},
		{LengthX, 0.2, 1, 0.5},
		{LengthY, 0.2, 1, 0.5},
		{ExcitationX, 0.1, 0.9, 0.5},
		{ListeningY, 0.1, 0.9, 0.5},
		{Thickness, 4, 20, 8},
		{ExcitationForce, 1, 500, 10},
		{ExcitationTime, 0.1, 5, 1},
		{Material, 1, 7, 4},
	} {
		t.Run(tc.id.String(), func(t *testing.T) {
			s, ok := Lookup(tc.id)
			if !ok {
				t.Fatal("missing spec")
			}
			if s.Min != tc.min || s.Max != tc.max || s.Default != tc.def {
				t.Fatalf("spec = [%v, %v] def %v, want [%v, %v] def %v", s.Min, s.Max, s.Default, tc.min, tc.max, tc.def)
			}
		})
	}
	if len(Layout()) != int(Count) {
		t.Fatalf("layout has %d entries", len(Layout()))
	}
}

func TestSetClampsAndSnaps(t *testing.T) {
	v := Default()
	if err := v.Set(LengthX, 3); err != nil {
		t.Fatal(err)
	}
	if v.Get(LengthX) != 1 {
		t.Errorf("length clamped to %v, want 1", v.Get(LengthX))
	}
	if err := v.Set(ExcitationForce, 42.6); err != nil {
		t.Fatal(err)
	}
	if v.Get(ExcitationForce) != 43 {
		t.Errorf("force snapped to %v, want 43", v.Get(ExcitationForce))
	}
	if err := v.Set(Material, 9); err != nil {
		t.Fatal(err)
	}
	if v.Get(Material) != 7 {
		t.Errorf("material clamped to %v, want 7", v.Get(Material))
	}
	if err := v.Set(Count, 1); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestSkewedTaperRoundTrips(t *testing.T) {
	s, _ := Lookup(FrequencyDependentDamping)
	if got := s.FromNormalized(0); got != s.Min {
		t.Errorf("FromNormalized(0) = %v", got)
	}
	if got := s.FromNormalized(1); math.Abs(got-s.Max) > 1e-12 {
		t.Errorf("FromNormalized(1) = %v", got)
	}
	// Skew < 1 spends more of the knob on small values.
	if mid := s.FromNormalized(0.5); mid > (s.Min+s.Max)/4 {
		t.Errorf("FromNormalized(0.5) = %v, expected strong taper", mid)
	}
	for _, p := range []float64{0.1, 0.3, 0.6, 0.9} {
		v := s.FromNormalized(p)
		back := s.ToNormalized(v)
		if math.Abs(back-p) > 0.01 {
			t.Errorf("round trip %v -> %v -> %v", p, v, back)
		}
	}
}

func TestConfigConvertsUnits(t *testing.T) {
	v := Default()
	_ = v.Set(Thickness, 5)
	_ = v.Set(ExcitationTime, 2)
	cfg := v.Config()
	if math.Abs(cfg.Thickness-0.005) > 1e-12 {
		t.Errorf("thickness = %v m, want 0.005", cfg.Thickness)
	}
	if math.Abs(cfg.ExcitationDuration-0.002) > 1e-12 {
		t.Errorf("excitation duration = %v s, want 0.002", cfg.ExcitationDuration)
	}
	if cfg.Material != material.Aluminium {
		t.Errorf("material = %v, want aluminium", cfg.Material)
	}
	if cfg.MaxForce != 10 {
		t.Errorf("force = %v, want 10", cfg.MaxForce)
	}
}

func TestPresetRoundTrip(t *testing.T) {
	v := Default()
	_ = v.Set(FrequencyIndependentDamping, 2.5)
	_ = v.Set(LengthY, 0.8)
	_ = v.Set(Material, float64(material.Gold))
	var buf bytes.Buffer
	if err := Write(&buf, v); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "[plate]") {
		t.Fatalf("preset missing section:\n%s", buf.String())
	}
	got, err := Read(buf.Bytes())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != v {
		t.Fatalf("round trip mismatch\nwant %v\ngot  %v", v, got)
	}
}

func TestReadFillsDefaultsAndClamps(t *testing.T) {
	got, err := Read([]byte("[plate]\nplate_length_x = 7\nexcitation_force = abc\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Get(LengthX) != 1 {
		t.Errorf("length x = %v, want clamped 1", got.Get(LengthX))
	}
	if got.Get(ExcitationForce) != 10 {
		t.Errorf("force = %v, want default 10", got.Get(ExcitationForce))
	}
	if got.Get(Thickness) != 8 {
		t.Errorf("thickness = %v, want default 8", got.Get(Thickness))
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plate.ini")
	v := Default()
	_ = v.Set(ListeningX, 0.3)
	if err := SaveFile(path, v); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Get(ListeningX) != 0.3 {
		t.Fatalf("listening x = %v, want 0.3", got.Get(ListeningX))
	}
}

func TestFlagsOverrideOnlyExplicitValues(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-plate-length-x", "0.9", "-excitation-force", "900"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	base := Default()
	_ = base.Set(LengthY, 0.3)
	got := f.Apply(base)
	if got.Get(LengthX) != 0.9 {
		t.Errorf("length x = %v, want 0.9", got.Get(LengthX))
	}
	if got.Get(ExcitationForce) != 500 {
		t.Errorf("force = %v, want clamped 500", got.Get(ExcitationForce))
	}
	if got.Get(LengthY) != 0.3 {
		t.Errorf("length y = %v, want base 0.3", got.Get(LengthY))
	}
}
