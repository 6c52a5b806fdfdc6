// Package waveplot draws rendered strikes as PNG waveform plots.
package waveplot

import (
	"errors"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// MaxPoints caps how many points are drawn; longer renders are decimated by
// keeping the peak of each bucket.
const MaxPoints = 4000

var (
	width  = 10 * vg.Inch
	height = 4 * vg.Inch
)

// Points converts interleaved stereo samples to (seconds, amplitude) points
// of the left channel.
func Points(samples []float32, sampleRate int) plotter.XYs {
	frames := len(samples) / 2
	if frames == 0 || sampleRate <= 0 {
		return nil
	}
	bucket := max(1, (frames+MaxPoints-1)/MaxPoints)
	pts := make(plotter.XYs, 0, frames/bucket+1)
	for start := 0; start < frames; start += bucket {
		end := min(start+bucket, frames)
		peak := samples[start*2]
		for f := start + 1; f < end; f++ {
			if s := samples[f*2]; abs32(s) > abs32(peak) {
				peak = s
			}
		}
		pts = append(pts, plotter.XY{
			X: float64(start) / float64(sampleRate),
			Y: float64(peak),
		})
	}
	return pts
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func build(samples []float32, sampleRate int, title string) (*plot.Plot, error) {
	pts := Points(samples, sampleRate)
	if len(pts) == 0 {
		return nil, errors.New("waveplot: no samples")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "amplitude"
	p.Y.Min, p.Y.Max = -1, 1
	p.Add(plotter.NewGrid())
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(0.5)
	p.Add(line)
	return p, nil
}

// Write encodes the plot of samples as PNG to w.
func Write(w io.Writer, samples []float32, sampleRate int, title string) error {
	p, err := build(samples, sampleRate, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes the plot to path.
func Save(path string, samples []float32, sampleRate int, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, samples, sampleRate, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
