package params

import (
	"fmt"
	"math"

	"github.com/cbegin/thinplate-go/internal/material"
	"github.com/cbegin/thinplate-go/internal/plate"
)

// ID names a host parameter.
type ID int

const (
	FrequencyIndependentDamping ID = iota
	FrequencyDependentDamping
	LengthX
	LengthY
	ExcitationX
	ExcitationY
	ListeningX
	ListeningY
	Thickness
	ExcitationForce
	ExcitationTime
	Material

	Count
)

// Spec describes one parameter the way the host exposes it.
type Spec struct {
	ID       ID
	Key      string // preset key
	Name     string // display name
	Min, Max float64
	Default  float64
	Interval float64 // snapping step, 0 = continuous
	Skew     float64 // taper exponent for normalized values, 1 = linear
	Unit     string
}

var layout = [Count]Spec{
	{FrequencyIndependentDamping, "frequency_independent_damping", "Frequency Independent Damping", 0.01, 10, 1, 0, 1, ""},
	{FrequencyDependentDamping, "frequency_dependent_damping", "Frequency Dependent Damping", 0.0001, 0.1, 0.0005, 0.00001, 0.35, ""},
	{LengthX, "plate_length_x", "Plate length X", 0.2, 1, 0.5, 0, 1, "m"},
	{LengthY, "plate_length_y", "Plate length Y", 0.2, 1, 0.5, 0, 1, "m"},
	{ExcitationX, "excitation_pos_x", "Excitation pos X", 0.1, 0.9, 0.5, 0, 1, ""},
	{ExcitationY, "excitation_pos_y", "Excitation pos Y", 0.1, 0.9, 0.5, 0, 1, ""},
	{ListeningX, "listening_pos_x", "Listening pos X", 0.1, 0.9, 0.5, 0, 1, ""},
	{ListeningY, "listening_pos_y", "Listening pos Y", 0.1, 0.9, 0.5, 0, 1, ""},
	{Thickness, "plate_thickness", "Plate thickness", 4, 20, 8, 0, 1, "mm"},
	{ExcitationForce, "excitation_force", "Excitation force", 1, 500, 10, 1, 1, ""},
	{ExcitationTime, "excitation_time", "Excitation time", 0.1, 5, 1, 0, 1, "ms"},
	{Material, "plate_material", "Plate material", 1, material.Count, float64(material.Aluminium), 1, 1, ""},
}

// Layout returns every parameter spec in id order.
func Layout() []Spec {
	out := make([]Spec, Count)
	copy(out, layout[:])
	return out
}

// Lookup returns the spec for id.
func Lookup(id ID) (Spec, bool) {
	if id < 0 || id >= Count {
		return Spec{}, false
	}
	return layout[id], true
}

// ByKey finds a spec by preset key.
func ByKey(key string) (Spec, bool) {
	for _, s := range layout {
		if s.Key == key {
			return s, true
		}
	}
	return Spec{}, false
}

func (id ID) String() string {
	if s, ok := Lookup(id); ok {
		return s.Key
	}
	return fmt.Sprintf("param(%d)", int(id))
}

// Clamp limits v to the range and snaps it to the interval. NaN becomes the
// default.
func (s Spec) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return s.Default
	}
	if s.Interval > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Interval)*s.Interval
	}
	return math.Min(math.Max(v, s.Min), s.Max)
}

// FromNormalized maps a 0-1 host value onto the range through the skew taper.
func (s Spec) FromNormalized(p float64) float64 {
	p = math.Min(math.Max(p, 0), 1)
	if s.Skew > 0 && s.Skew != 1 && p > 0 {
		p = math.Exp(math.Log(p) / s.Skew)
	}
	return s.Clamp(s.Min + (s.Max-s.Min)*p)
}

// ToNormalized is the inverse of FromNormalized.
func (s Spec) ToNormalized(v float64) float64 {
	p := (s.Clamp(v) - s.Min) / (s.Max - s.Min)
	if s.Skew > 0 && s.Skew != 1 && p > 0 {
		p = math.Pow(p, s.Skew)
	}
	return p
}

// Values is one raw value per parameter, in host units (mm, ms).
type Values [Count]float64

// Default returns every parameter at its default.
func Default() Values {
	var v Values
	for i, s := range layout {
		v[i] = s.Clamp(s.Default)
	}
	return v
}

// Get returns the value of id, or 0 for an unknown id.
func (v *Values) Get(id ID) float64 {
	if id < 0 || id >= Count {
		return 0
	}
	return v[id]
}

// Set clamps and stores x.
func (v *Values) Set(id ID, x float64) error {
	s, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("params: unknown parameter %d", int(id))
	}
	v[id] = s.Clamp(x)
	return nil
}

// Clamped returns a copy with every value clamped to its spec.
func (v Values) Clamped() Values {
	for i, s := range layout {
		v[i] = s.Clamp(v[i])
	}
	return v
}

// Config converts host units into the plate's SI config.
func (v Values) Config() plate.Config {
	return plate.Config{
		Sigma0:             v[FrequencyIndependentDamping],
		Sigma1:             v[FrequencyDependentDamping],
		LengthX:            v[LengthX],
		LengthY:            v[LengthY],
		ExcitationX:        v[ExcitationX],
		ExcitationY:        v[ExcitationY],
		ListeningX:         v[ListeningX],
		ListeningY:         v[ListeningY],
		Thickness:          v[Thickness] * 0.001,
		MaxForce:           v[ExcitationForce],
		ExcitationDuration: v[ExcitationTime] * 0.001,
		Material:           material.ID(math.Round(v[Material])),
	}
}
