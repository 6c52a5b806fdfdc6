package plate

import (
	"fmt"
	"math"
)

// ForceAt is the raised-cosine mallet pulse: zero at t=0, maxForce at
// t=duration/2, zero again from t=duration on.
func ForceAt(t, duration, maxForce float64) float64 {
	if duration <= 0 || t < 0 || t >= duration {
		return 0
	}
	return maxForce / 2 * (1 - math.Cos(2*math.Pi*t/duration))
}

// pulseSamples is how many steps of the pulse fit in duration.
func pulseSamples(duration, k float64) int {
	if duration <= 0 || k <= 0 {
		return 0
	}
	return int(math.Floor(duration * (1 / k)))
}

// Excitation is the strike state: where the force lands and how far into the
// pulse the plate is.
type Excitation struct {
	Li, Mi         int
	AlphaX, AlphaY float64

	N     int     // steps since the hit
	T     float64 // elapsed pulse time, s
	Force float64 // force injected on the last step
	idle  bool
}

// Active reports whether a pulse is in progress or pending.
func (e *Excitation) Active() bool { return !e.idle }

func (e *Excitation) start() {
	e.N = 0
	e.T = 0
	e.Force = 0
	e.idle = false
}

func (e *Excitation) stop() {
	e.Force = 0
	e.idle = true
}

// next returns the force for the current step and advances the pulse.
// duration and maxForce come from the live config.
func (e *Excitation) next(k, duration, maxForce float64) float64 {
	if e.idle {
		return 0
	}
	if e.N < pulseSamples(duration, k) {
		e.Force = ForceAt(e.T, duration, maxForce)
		e.T += k
	} else {
		e.Force = 0
	}
	e.N++
	return e.Force
}

// tap is one of the four nodes the mallet force is spread over.
type tap struct {
	idx    int
	weight float64
}

// locateExcitation derives the strike node and bilinear offsets. Indices are
// clamped so that the pulse lands on interior nodes only; ratios outside
// [0, 1] are rejected.
func locateExcitation(g Grid, cfg Config) (Excitation, [4]tap, error) {
	var e Excitation
	var taps [4]tap
	rx, ry := cfg.ExcitationX, cfg.ExcitationY
	if !finite(rx, ry) || rx < 0 || rx > 1 || ry < 0 || ry > 1 {
		return e, taps, fmt.Errorf("%w: (%g, %g)", ErrExcitationOutOfRange, rx, ry)
	}
	e.Li, e.AlphaX = clampStrike(rx*cfg.LengthX/g.Hx, g.Nx)
	e.Mi, e.AlphaY = clampStrike(ry*cfg.LengthY/g.Hy, g.Ny)

	area := g.Hx * g.Hy
	ax, ay := e.AlphaX, e.AlphaY
	corners := [4]struct {
		l, m int
		w    float64
	}{
		{e.Li, e.Mi, (1 - ax) * (1 - ay)},
		{e.Li, e.Mi + 1, (1 - ax) * ay},
		{e.Li + 1, e.Mi, ax * (1 - ay)},
		{e.Li + 1, e.Mi + 1, ax * ay},
	}
	for i, c := range corners {
		taps[i].idx = c.l*g.Ny + c.m
		if g.Interior(c.l, c.m) {
			taps[i].weight = c.w / area
		}
	}
	e.idle = true
	return e, taps, nil
}

// clampStrike splits a fractional grid coordinate into a node index and an
// offset, keeping index and index+1 inside [2, n-2) where the grid allows it.
func clampStrike(pos float64, n int) (int, float64) {
	i := int(math.Floor(pos))
	alpha := pos - float64(i)
	lo, hi := 2, n-4
	if hi < lo {
		hi = lo
	}
	switch {
	case i < lo:
		return lo, 0
	case i > hi:
		if hi+1 < n-2 {
			return hi, 1
		}
		return hi, 0
	}
	return i, alpha
}

// locateListening picks the nearest node at or below the listening ratio.
func locateListening(g Grid, cfg Config) (int, int, error) {
	rx, ry := cfg.ListeningX, cfg.ListeningY
	if !finite(rx, ry) || rx < 0 || rx > 1 || ry < 0 || ry > 1 {
		return 0, 0, fmt.Errorf("%w: (%g, %g)", ErrListeningOutOfRange, rx, ry)
	}
	l := min(int(math.Floor(rx*float64(g.Nx))), g.Nx-1)
	m := min(int(math.Floor(ry*float64(g.Ny))), g.Ny-1)
	return l, m, nil
}
