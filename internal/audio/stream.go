package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// DefaultBlockFrames bounds how many frames a source is asked for at once.
// Hits are picked up at block boundaries, so this is also the worst-case
// strike latency.
const DefaultBlockFrames = 256

// SampleSource renders interleaved stereo float32 frames into dst.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader exposes a SampleSource as 32-bit float little-endian stereo,
// the format ebiten's F32 players consume. Large reads are split into blocks
// of at most blockFrames frames.
type StreamReader struct {
	mu          sync.Mutex
	source      SampleSource
	blockFrames int
	buf         []float32
	frames      atomic.Int64
}

func NewStreamReader(source SampleSource, blockFrames int) *StreamReader {
	if blockFrames <= 0 {
		blockFrames = DefaultBlockFrames
	}
	return &StreamReader{
		source:      source,
		blockFrames: blockFrames,
		buf:         make([]float32, blockFrames*2),
	}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	written := 0
	for written < frames {
		n := min(frames-written, r.blockFrames)
		block := r.buf[:n*2]
		r.source.Process(block)
		off := written * 8
		for i, s := range block {
			binary.LittleEndian.PutUint32(p[off+i*4:], math.Float32bits(s))
		}
		written += n
	}
	r.frames.Add(int64(written))
	return written * 8, nil
}

// Frames is the number of frames rendered so far.
func (r *StreamReader) Frames() int64 { return r.frames.Load() }

func (r *StreamReader) Close() error { return nil }

type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer opens the shared audio context at sampleRate and streams source
// through it in blocks of blockFrames.
func NewPlayer(sampleRate int, source SampleSource, blockFrames int) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source, blockFrames)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	pl.SetBufferSize(time.Duration(blockFrames*4) * time.Second / time.Duration(sampleRate))
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

// Rendered is the number of frames handed to the driver so far.
func (p *Player) Rendered() int64 { return p.reader.Frames() }

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}

var _ io.ReadCloser = (*StreamReader)(nil)
