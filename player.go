package thinplate

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	intaudio "github.com/cbegin/thinplate-go/internal/audio"
	intparams "github.com/cbegin/thinplate-go/internal/params"
	intplate "github.com/cbegin/thinplate-go/internal/plate"
	intsynth "github.com/cbegin/thinplate-go/internal/synth"
)

// Params holds one raw value per plate parameter, in host units
// (metres, millimetres of thickness, milliseconds of strike time).
type Params = intparams.Values

type ParamID = intparams.ID

const (
	FrequencyIndependentDamping = intparams.FrequencyIndependentDamping
	FrequencyDependentDamping   = intparams.FrequencyDependentDamping
	LengthX                     = intparams.LengthX
	LengthY                     = intparams.LengthY
	ExcitationX                 = intparams.ExcitationX
	ExcitationY                 = intparams.ExcitationY
	ListeningX                  = intparams.ListeningX
	ListeningY                  = intparams.ListeningY
	Thickness                   = intparams.Thickness
	ExcitationForce             = intparams.ExcitationForce
	ExcitationTime              = intparams.ExcitationTime
	Material                    = intparams.Material
)

// Grid describes the discretised plate currently sounding.
type Grid = intplate.Grid

// DefaultParams returns every parameter at its default.
func DefaultParams() Params { return intparams.Default() }

// LoadPreset reads an INI preset file.
func LoadPreset(path string) (Params, error) { return intparams.LoadFile(path) }

// SavePreset writes p as an INI preset file.
func SavePreset(path string, p Params) error { return intparams.SaveFile(path, p) }

type PlayerOption func(*playerConfig)

type playerConfig struct {
	params      Params
	logger      logrus.FieldLogger
	blockFrames int
	sampleTap   func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		params:      DefaultParams(),
		logger:      logrus.StandardLogger(),
		blockFrames: intaudio.DefaultBlockFrames,
	}
}

// WithParams sets the initial parameters.
func WithParams(p Params) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params = p
	}
}

func WithLogger(l logrus.FieldLogger) PlayerOption {
	return func(cfg *playerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithBlockFrames sets the processing block size. Hits and parameter changes
// are picked up once per block.
func WithBlockFrames(frames int) PlayerOption {
	return func(cfg *playerConfig) {
		if frames > 0 {
			cfg.blockFrames = frames
		}
	}
}

// WithSampleTap installs a callback invoked with each generated stereo block.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player plays a struck plate through the system audio device.
type Player struct {
	mu          sync.Mutex
	sampleRate  int
	blockFrames int
	synth       *intsynth.Synth
	audio       *intaudio.Player
	sampleTap   func([]float32)
}

type tapSource struct {
	synth *intsynth.Synth
	tap   func([]float32)
}

func (s *tapSource) Process(dst []float32) {
	s.synth.Process(dst)
	if s.tap != nil {
		s.tap(dst)
	}
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	synth, err := intsynth.New(sampleRate, cfg.params, intsynth.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}
	return &Player{
		sampleRate:  sampleRate,
		blockFrames: cfg.blockFrames,
		synth:       synth,
		sampleTap:   cfg.sampleTap,
	}, nil
}

// Start opens the audio device on first use and resumes playback. The plate
// is silent until the first Hit.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		backend, err := intaudio.NewPlayer(p.sampleRate, &tapSource{synth: p.synth, tap: p.sampleTap}, p.blockFrames)
		if err != nil {
			return err
		}
		p.audio = backend
	}
	p.audio.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	return err
}

// Hit strikes the plate at the next block boundary. The grid is rebuilt from
// the current parameters, so geometry changes only take effect here.
func (p *Player) Hit() { p.synth.Hit() }

// NoteOn strikes the plate; note numbers are ignored.
func (p *Player) NoteOn(note, velocity int) { p.synth.NoteOn(note, velocity) }

func (p *Player) SetParam(id ParamID, v float64) error { return p.synth.SetParam(id, v) }

func (p *Player) SetParams(v Params) { p.synth.SetParams(v) }

func (p *Player) Params() Params { return p.synth.Params() }

// LoadPreset replaces the parameters with those in an INI file.
func (p *Player) LoadPreset(path string) error {
	v, err := intparams.LoadFile(path)
	if err != nil {
		return err
	}
	p.synth.SetParams(v)
	return nil
}

// SavePreset writes the current parameters to an INI file.
func (p *Player) SavePreset(path string) error {
	return intparams.SaveFile(path, p.synth.Params())
}

// Grid returns the grid derived at the last accepted hit.
func (p *Player) Grid() Grid { return p.synth.Grid() }

// PlaybackPosition returns the current output position of the audio driver
// in frames. Returns 0 if the device has not been opened.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * float64(p.sampleRate))
}
