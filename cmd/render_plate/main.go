package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/cbegin/thinplate-go"
	intparams "github.com/cbegin/thinplate-go/internal/params"
	"github.com/cbegin/thinplate-go/internal/waveplot"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		seconds    = flag.Float64("seconds", 3, "render length in seconds")
		hitList    = flag.String("hits", "0", "comma-separated strike times in seconds")
		presetPath = flag.String("preset", "", "path to an INI preset")
		outPath    = flag.String("out", "plate.wav", "output WAV path")
		plotPath   = flag.String("plot", "", "optional PNG waveform path")
	)
	paramFlags := intparams.RegisterFlags(flag.CommandLine)
	flag.Parse()

	params := thinplate.DefaultParams()
	if *presetPath != "" {
		p, err := thinplate.LoadPreset(*presetPath)
		if err != nil {
			log.Fatal(err)
		}
		params = p
	}
	params = paramFlags.Apply(params)

	hits, err := parseHitTimes(*hitList)
	if err != nil {
		log.Fatal(err)
	}
	samples, err := thinplate.RenderSamples(params, *sampleRate, *seconds, hits...)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*outPath, thinplate.EncodeWAVFloat32LE(samples, *sampleRate, 2), 0o644); err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"path":    *outPath,
		"frames":  len(samples) / 2,
		"strikes": len(hits),
	}).Info("wrote wav")

	if *plotPath != "" {
		title := fmt.Sprintf("%gx%g m plate, %g mm", params.Get(thinplate.LengthX), params.Get(thinplate.LengthY), params.Get(thinplate.Thickness))
		if err := waveplot.Save(*plotPath, samples, *sampleRate, title); err != nil {
			log.Fatal(err)
		}
		log.WithField("path", *plotPath).Info("wrote plot")
	}
}

func parseHitTimes(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -hits entry %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}
