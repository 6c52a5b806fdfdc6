package synth

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cbegin/thinplate-go/internal/material"
	"github.com/cbegin/thinplate-go/internal/params"
	"github.com/cbegin/thinplate-go/internal/plate"
)

// DefaultBlockSize is the block length used by offline renders.
const DefaultBlockSize = 512

type Option func(*Synth)

// WithLogger routes configuration diagnostics to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Synth) {
		if l != nil {
			s.log = l
		}
	}
}

// Synth drives one plate from host parameters. Parameter setters, Hit and
// NoteOn may be called from any goroutine; Process runs on the audio thread.
type Synth struct {
	mu     sync.Mutex // guards values
	values params.Values

	hit atomic.Bool

	engine     sync.Mutex // held while stepping or reconfiguring
	sampleRate int
	plate      *plate.Plate
	struck     bool

	log logrus.FieldLogger
}

func New(sampleRate int, values params.Values, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	s := &Synth{
		values: values.Clamped(),
		plate:  plate.New(),
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Prepare(sampleRate); err != nil {
		return nil, err
	}
	return s, nil
}

// Prepare sets the sample rate, preallocates for the largest grid the
// parameter ranges allow and configures the plate at rest. Pending hits are
// dropped and output is silent until the next hit. If the plate cannot be
// configured at the new rate, the previous rate and grid keep playing.
func (s *Synth) Prepare(sampleRate int) error {
	if sampleRate <= 0 {
		return errors.New("sampleRate must be positive")
	}
	cfg := s.Params().Config()
	k := 1 / float64(sampleRate)

	s.engine.Lock()
	defer s.engine.Unlock()
	s.plate.Reserve(worstCaseNodes(k))
	if err := s.plate.Configure(k, cfg); err != nil {
		s.log.WithError(err).WithFields(configFields(cfg)).Warn("plate configuration rejected")
		return err
	}
	s.hit.Store(false)
	s.struck = false
	s.sampleRate = sampleRate
	s.logGrid("plate prepared")
	return nil
}

func (s *Synth) SampleRate() int {
	s.engine.Lock()
	defer s.engine.Unlock()
	return s.sampleRate
}

// Params returns a copy of the live parameters.
func (s *Synth) Params() params.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

// SetParams replaces every parameter. Values are clamped to range.
func (s *Synth) SetParams(v params.Values) {
	v = v.Clamped()
	s.mu.Lock()
	s.values = v
	s.mu.Unlock()
}

func (s *Synth) SetParam(id params.ID, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Set(id, v)
}

// Hit requests a strike at the next block boundary. Requests made before
// that boundary collapse into one.
func (s *Synth) Hit() { s.hit.Store(true) }

// NoteOn strikes the plate; pitch is set by the plate itself. A zero
// velocity is a note-off and is ignored.
func (s *Synth) NoteOn(note, velocity int) {
	if velocity > 0 {
		s.Hit()
	}
}

// Struck reports whether a hit has been accepted since Prepare.
func (s *Synth) Struck() bool {
	s.engine.Lock()
	defer s.engine.Unlock()
	return s.struck
}

// Grid returns the grid currently being integrated.
func (s *Synth) Grid() plate.Grid {
	s.engine.Lock()
	defer s.engine.Unlock()
	return s.plate.Grid()
}

// Process renders len(dst)/2 interleaved stereo frames. The plate is mono;
// both channels carry the same hard-clipped sample.
func (s *Synth) Process(dst []float32) {
	cfg := s.Params().Config()

	s.engine.Lock()
	defer s.engine.Unlock()
	s.plate.Update(cfg)
	if s.hit.Swap(false) {
		if err := s.plate.Hit(); err != nil {
			s.log.WithError(err).WithFields(configFields(cfg)).Warn("plate hit rejected, keeping previous grid")
		} else {
			s.struck = true
			s.logGrid("plate hit")
		}
	}

	if !s.struck {
		clear(dst)
		return
	}
	frames := len(dst) / 2
	for f := 0; f < frames; f++ {
		s.plate.Step()
		v := float32(clip(s.plate.Output()))
		dst[f*2] = v
		dst[f*2+1] = v
	}
	if len(dst)%2 == 1 {
		dst[len(dst)-1] = 0
	}
}

// Schedule lists hit positions as frame offsets from the start of a render.
type Schedule []int

// RenderBlocks fills dst in blocks of blockSize frames. A hit is raised before
// the block containing each scheduled offset, so hits inside one block
// collapse into a single strike at its start.
func (s *Synth) RenderBlocks(dst []float32, blockSize int, sched Schedule) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	hits := slices.Clone(sched)
	slices.Sort(hits)
	frames := len(dst) / 2
	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)
		for len(hits) > 0 && hits[0] < end {
			if hits[0] >= 0 {
				s.Hit()
			}
			hits = hits[1:]
		}
		s.Process(dst[start*2 : end*2])
	}
}

func clip(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// worstCaseNodes is the largest grid any in-range parameter set produces at
// time step k: longest sides, thinnest plate, least damping, every material.
func worstCaseNodes(k float64) int {
	spec := func(id params.ID) params.Spec {
		s, _ := params.Lookup(id)
		return s
	}
	cfg := plate.DefaultConfig()
	cfg.LengthX = spec(params.LengthX).Max
	cfg.LengthY = spec(params.LengthY).Max
	cfg.Thickness = spec(params.Thickness).Min * 0.001
	cfg.Sigma1 = spec(params.FrequencyDependentDamping).Min
	nodes := 0
	for _, id := range material.All() {
		props, _ := material.Resolve(id)
		if _, g, err := plate.Derive(k, cfg, props); err == nil {
			nodes = max(nodes, g.Nodes())
		}
	}
	return nodes
}

// debugEnabled reports whether Debug entries would be emitted. Fields are
// only built when they are, so a hit on the audio thread does not allocate.
func (s *Synth) debugEnabled() bool {
	switch l := s.log.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(logrus.DebugLevel)
	}
	return true
}

func (s *Synth) logGrid(msg string) {
	if !s.debugEnabled() {
		return
	}
	g := s.plate.Grid()
	s.log.WithFields(logrus.Fields{
		"nx": g.Nx,
		"ny": g.Ny,
		"h":  g.H,
		"mu": g.Mu,
		"s":  g.S,
	}).Debug(msg)
}

func configFields(cfg plate.Config) logrus.Fields {
	return logrus.Fields{
		"lengthX":   cfg.LengthX,
		"lengthY":   cfg.LengthY,
		"thickness": cfg.Thickness,
		"sigma1":    cfg.Sigma1,
		"material":  cfg.Material.String(),
	}
}
