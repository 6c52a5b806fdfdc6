package plate

import (
	"fmt"
	"math"

	"github.com/cbegin/thinplate-go/internal/material"
)

// MinGridSize is the smallest node count per axis the stencil can run on:
// two clamped rows on each side plus at least one interior row.
const MinGridSize = 5

// Physics holds the material constants in effect and the quantities derived
// from them.
type Physics struct {
	material.Properties
	Thickness float64 // H, m
	Stiffness float64 // D = E H^3 / (12 (1 - nu^2))
	Kappa     float64 // sqrt(D / (rho H))
}

// Grid is the spatial discretisation and the scheme coefficients.
type Grid struct {
	K      float64 // time step, s
	Nx, Ny int
	H      float64 // min(Hx, Hy)
	Hx, Hy float64
	Mu     float64 // kappa k / h^2
	MuSq   float64
	S      float64 // 2 sigma1 k / h^2
}

// Nodes is the number of cells per state slice.
func (g Grid) Nodes() int { return g.Nx * g.Ny }

// Interior reports whether (l, m) is updated by the stencil. Everything else
// is clamped at zero displacement.
func (g Grid) Interior(l, m int) bool {
	return l >= 2 && l < g.Nx-2 && m >= 2 && m < g.Ny-2
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Derive computes plate physics and the grid for time step k. It has no side
// effects; nothing is allocated.
func Derive(k float64, cfg Config, props material.Properties) (Physics, Grid, error) {
	if !finite(k, cfg.LengthX, cfg.LengthY, cfg.Thickness, cfg.Sigma1,
		props.Density, props.YoungsModulus, props.PoissonsRatio) {
		return Physics{}, Grid{}, fmt.Errorf("%w: non-finite input", ErrInvalidParameter)
	}
	switch {
	case k <= 0:
		return Physics{}, Grid{}, fmt.Errorf("%w: time step %g", ErrInvalidParameter, k)
	case cfg.LengthX <= 0 || cfg.LengthY <= 0:
		return Physics{}, Grid{}, fmt.Errorf("%w: plate length %gx%g", ErrInvalidParameter, cfg.LengthX, cfg.LengthY)
	case cfg.Thickness <= 0:
		return Physics{}, Grid{}, fmt.Errorf("%w: thickness %g", ErrInvalidParameter, cfg.Thickness)
	case cfg.Sigma1 < 0:
		return Physics{}, Grid{}, fmt.Errorf("%w: sigma1 %g", ErrInvalidParameter, cfg.Sigma1)
	case props.Density <= 0 || props.YoungsModulus <= 0 || math.Abs(props.PoissonsRatio) >= 1:
		return Physics{}, Grid{}, fmt.Errorf("%w: material %+v", ErrInvalidParameter, props)
	}

	H := cfg.Thickness
	phys := Physics{Properties: props, Thickness: H}
	phys.Stiffness = props.YoungsModulus * H * H * H / (12 * (1 - props.PoissonsRatio*props.PoissonsRatio))
	phys.Kappa = math.Sqrt(phys.Stiffness / (props.Density * H))

	s1 := cfg.Sigma1
	h := 2 * math.Sqrt(k*(s1+math.Sqrt(phys.Kappa*phys.Kappa+s1*s1)))
	nx := math.Floor(cfg.LengthX / h)
	ny := math.Floor(cfg.LengthY / h)
	if nx < MinGridSize || ny < MinGridSize {
		return Physics{}, Grid{}, fmt.Errorf("%w: %gx%g nodes at h=%g", ErrInsufficientGridResolution, nx, ny, h)
	}
	if nx*ny > math.MaxInt32 {
		return Physics{}, Grid{}, fmt.Errorf("%w: %gx%g nodes", ErrInvalidParameter, nx, ny)
	}

	g := Grid{K: k, Nx: int(nx), Ny: int(ny)}
	g.Hx = cfg.LengthX / nx
	g.Hy = cfg.LengthY / ny
	g.H = math.Min(g.Hx, g.Hy)
	g.Mu = phys.Kappa * k / (g.H * g.H)
	g.MuSq = g.Mu * g.Mu
	g.S = 2 * s1 * k / (g.H * g.H)
	return phys, g, nil
}
