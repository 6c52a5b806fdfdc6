package plate

import "github.com/cbegin/thinplate-go/internal/material"

// Config is the live parameter set. It is replaced every audio block; only
// Sigma0, MaxForce and ExcitationDuration are read by the stepping loop, the
// rest is consumed when the plate is (re)configured.
type Config struct {
	Sigma0 float64 // frequency-independent damping
	Sigma1 float64 // frequency-dependent damping

	LengthX float64 // m
	LengthY float64 // m

	// Positions are fractions of the plate dimensions, 0-1.
	ExcitationX float64
	ExcitationY float64
	ListeningX  float64
	ListeningY  float64

	Thickness          float64 // m
	MaxForce           float64 // peak mallet force
	ExcitationDuration float64 // s

	Material material.ID
}

// DefaultConfig is a 0.5 m square aluminium plate, 5 mm thick, struck and
// heard at its centre.
func DefaultConfig() Config {
	return Config{
		Sigma0:             1,
		Sigma1:             0.005,
		LengthX:            0.5,
		LengthY:            0.5,
		ExcitationX:        0.5,
		ExcitationY:        0.5,
		ListeningX:         0.5,
		ListeningY:         0.5,
		Thickness:          0.005,
		MaxForce:           10,
		ExcitationDuration: 0.001,
		Material:           material.Aluminium,
	}
}
