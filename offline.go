package thinplate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	intsynth "github.com/cbegin/thinplate-go/internal/synth"
)

// RenderSamples renders seconds of interleaved stereo audio. The plate is
// struck at each of hitTimes (seconds); with no hit times it is struck at 0.
func RenderSamples(p Params, sampleRate int, seconds float64, hitTimes ...float64) ([]float32, error) {
	return RenderSamplesWithLogger(logrus.StandardLogger(), p, sampleRate, seconds, hitTimes...)
}

// RenderSamplesWithLogger is RenderSamples with configuration diagnostics
// sent to l.
func RenderSamplesWithLogger(l logrus.FieldLogger, p Params, sampleRate int, seconds float64, hitTimes ...float64) ([]float32, error) {
	if seconds < 0 || math.IsNaN(seconds) {
		return nil, errors.New("seconds must not be negative")
	}
	synth, err := intsynth.New(sampleRate, p, intsynth.WithLogger(l))
	if err != nil {
		return nil, err
	}
	if len(hitTimes) == 0 {
		hitTimes = []float64{0}
	}
	sched := make(intsynth.Schedule, 0, len(hitTimes))
	for _, t := range hitTimes {
		sched = append(sched, int(math.Round(t*float64(sampleRate))))
	}
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	synth.RenderBlocks(out, intsynth.DefaultBlockSize, sched)
	return out, nil
}

type wavHeader struct {
	Riff          [4]byte
	ChunkSize     uint32
	Wave          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

const wavFormatIEEEFloat = 3

// WriteWAVFloat32LE writes samples as a 32-bit IEEE float WAV stream.
func WriteWAVFloat32LE(w io.Writer, samples []float32, sampleRate int, channels int) error {
	dataSize := uint32(len(samples) * 4)
	hdr := wavHeader{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		Format:        wavFormatIEEEFloat,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * 4),
		BlockAlign:    uint16(channels * 4),
		BitsPerSample: 32,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, samples)
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	var buf bytes.Buffer
	buf.Grow(44 + len(samples)*4)
	_ = WriteWAVFloat32LE(&buf, samples, sampleRate, channels)
	return buf.Bytes()
}
