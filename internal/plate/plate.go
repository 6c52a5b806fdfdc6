package plate

import (
	"fmt"

	"github.com/cbegin/thinplate-go/internal/material"
)

// OutputScale brings raw displacement into audio range.
const OutputScale = 1e-6

// Slice roles in Plate.role.
const (
	next = iota
	cur
	prev
)

// Plate is a clamped rectangular Kirchhoff plate integrated with an explicit
// 13-point finite-difference scheme.
//
// Configure and Hit allocate (only when the reserved capacity is exceeded)
// and must not be called while Step/Output are running; Step and Output never
// allocate. Plate is not safe for concurrent use.
type Plate struct {
	k     float64
	live  Config
	props material.Properties

	phys Physics
	grid Grid
	exc  Excitation
	taps [4]tap
	lisL int
	lisM int

	bufs [3][]float64
	role [3]int

	configured bool
}

// New returns an unconfigured plate. Material constants start at a steel-like
// default so that an unknown material id still yields a usable plate.
func New() *Plate {
	return &Plate{
		live:  DefaultConfig(),
		props: material.Properties{Density: 7700, YoungsModulus: 2e11, PoissonsRatio: 0.3},
		role:  [3]int{0, 1, 2},
	}
}

// Reserve makes sure each state slice can hold nodes cells without another
// allocation.
func (p *Plate) Reserve(nodes int) {
	for i := range p.bufs {
		if cap(p.bufs[i]) < nodes {
			b := make([]float64, len(p.bufs[i]), nodes)
			copy(b, p.bufs[i])
			p.bufs[i] = b
		}
	}
}

// Capacity is the number of cells every slice can hold.
func (p *Plate) Capacity() int {
	c := cap(p.bufs[0])
	for _, b := range p.bufs[1:] {
		c = min(c, cap(b))
	}
	return c
}

// Update replaces the live parameters. It is cheap and never touches the
// grid: geometry, damping coefficients, strike and listening nodes keep the
// values derived at the last Configure or Hit. Sigma0, MaxForce and
// ExcitationDuration take effect on the next Step; non-finite values for them
// are ignored and the previous ones kept.
func (p *Plate) Update(cfg Config) {
	if !finite(cfg.Sigma0) {
		cfg.Sigma0 = p.live.Sigma0
	}
	if !finite(cfg.MaxForce) {
		cfg.MaxForce = p.live.MaxForce
	}
	if !finite(cfg.ExcitationDuration) {
		cfg.ExcitationDuration = p.live.ExcitationDuration
	}
	p.live = cfg
	material.Apply(cfg.Material, &p.props)
}

// Configure sets the time step, applies cfg and rebuilds the grid from rest.
// On error the plate keeps its previous grid, state and time step.
func (p *Plate) Configure(k float64, cfg Config) error {
	if !finite(cfg.Sigma0, cfg.MaxForce, cfg.ExcitationDuration) {
		return fmt.Errorf("%w: non-finite sigma0, force or duration", ErrInvalidParameter)
	}
	props := p.props
	material.Apply(cfg.Material, &props)
	phys, g, err := Derive(k, cfg, props)
	if err != nil {
		return err
	}
	exc, taps, err := locateExcitation(g, cfg)
	if err != nil {
		return err
	}
	lisL, lisM, err := locateListening(g, cfg)
	if err != nil {
		return err
	}

	p.k = k
	p.live = cfg
	p.props = props
	p.phys = phys
	p.grid = g
	p.exc = exc
	p.taps = taps
	p.lisL, p.lisM = lisL, lisM

	n := g.Nodes()
	p.Reserve(n)
	for i := range p.bufs {
		p.bufs[i] = p.bufs[i][:n]
		clear(p.bufs[i])
	}
	p.role = [3]int{0, 1, 2}
	p.configured = true
	return nil
}

// Hit re-derives the grid from the live parameters, returns the plate to rest
// and starts a new mallet pulse. On error nothing changes.
func (p *Plate) Hit() error {
	if err := p.Configure(p.k, p.live); err != nil {
		return err
	}
	p.exc.start()
	return nil
}

// Configured reports whether a Configure call has succeeded.
func (p *Plate) Configured() bool { return p.configured }

func (p *Plate) Grid() Grid             { return p.grid }
func (p *Plate) Physics() Physics       { return p.phys }
func (p *Plate) Excitation() Excitation { return p.exc }
func (p *Plate) Live() Config           { return p.live }

// Listening returns the pickup node.
func (p *Plate) Listening() (l, m int) { return p.lisL, p.lisM }

// Displacement returns u^n at (l, m).
func (p *Plate) Displacement(l, m int) float64 {
	if l < 0 || l >= p.grid.Nx || m < 0 || m >= p.grid.Ny {
		return 0
	}
	return p.bufs[p.role[cur]][l*p.grid.Ny+m]
}

// Output is the scaled displacement at the listening node.
func (p *Plate) Output() float64 {
	if !p.configured {
		return 0
	}
	return p.bufs[p.role[cur]][p.lisL*p.grid.Ny+p.lisM] * OutputScale
}

// Step advances the plate one time step.
//
// Only nodes with 2 <= l < Nx-2 and 2 <= m < Ny-2 are written; the two outer
// rows and columns of every slice stay at zero, which is the clamped edge.
// The last S term reads u^n[l, m-1] rather than u^(n-1)[l, m-1]; the damping
// balance of the voice depends on it.
func (p *Plate) Step() {
	if !p.configured {
		return
	}
	g := &p.grid
	force := p.exc.next(g.K, p.live.ExcitationDuration, p.live.MaxForce)

	un := p.bufs[p.role[next]]
	u := p.bufs[p.role[cur]]
	up := p.bufs[p.role[prev]]

	muSq, S := g.MuSq, g.S
	c0 := 2 - 20*muSq - 4*S
	c1 := 8*muSq + S
	c2 := 2 * muSq
	cp := p.live.Sigma0*g.K - 1 + 4*S

	ny := g.Ny
	ny2 := 2 * ny
	for l := 2; l < g.Nx-2; l++ {
		row := l * ny
		for m := 2; m < ny-2; m++ {
			i := row + m
			un[i] = c0*u[i] +
				c1*(u[i+ny]+u[i-ny]+u[i+1]+u[i-1]) -
				c2*(u[i+ny+1]+u[i-ny+1]+u[i+ny-1]+u[i-ny-1]) -
				muSq*(u[i+ny2]+u[i-ny2]+u[i+2]+u[i-2]) +
				cp*up[i] -
				S*(up[i+ny]+up[i-ny]+up[i+1]+u[i-1])
		}
	}
	if force > 0 {
		for _, t := range p.taps {
			if t.weight != 0 {
				un[t.idx] += t.weight * force
			}
		}
	}

	p.role = [3]int{p.role[prev], p.role[next], p.role[cur]}
}
