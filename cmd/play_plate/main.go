package main

import (
	"flag"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cbegin/thinplate-go"
	intparams "github.com/cbegin/thinplate-go/internal/params"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		blockSize  = flag.Int("block", 256, "processing block size in frames")
		presetPath = flag.String("preset", "", "path to an INI preset")
		savePath   = flag.String("save-preset", "", "write the effective parameters to this INI file")
		hits       = flag.Int("hits", 4, "number of strikes (0 = strike forever)")
		interval   = flag.Duration("interval", 1500*time.Millisecond, "time between strikes")
		verbose    = flag.Bool("v", false, "log grid details on every strike")
	)
	paramFlags := intparams.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	params := thinplate.DefaultParams()
	if *presetPath != "" {
		p, err := thinplate.LoadPreset(*presetPath)
		if err != nil {
			log.Fatal(err)
		}
		params = p
	}
	params = paramFlags.Apply(params)
	if *savePath != "" {
		if err := thinplate.SavePreset(*savePath, params); err != nil {
			log.Fatal(err)
		}
	}

	pl, err := thinplate.NewPlayer(*sampleRate,
		thinplate.WithParams(params),
		thinplate.WithBlockFrames(*blockSize),
		thinplate.WithLogger(log.StandardLogger()),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := pl.Start(); err != nil {
		log.Fatal(err)
	}
	defer pl.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	count := 0
	strike := func() {
		pl.Hit()
		count++
		log.WithField("hit", count).Info("strike")
	}
	strike()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if *hits > 0 && count >= *hits {
				g := pl.Grid()
				log.WithFields(log.Fields{"nx": g.Nx, "ny": g.Ny, "hits": count}).Info("done")
				return
			}
			strike()
		}
	}
}
