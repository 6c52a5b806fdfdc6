package synth

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cbegin/thinplate-go/internal/material"
	"github.com/cbegin/thinplate-go/internal/params"
)

func newTestSynth(t *testing.T, v params.Values) (*Synth, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s, err := New(48000, v, WithLogger(logger))
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	hook.Reset()
	return s, hook
}

func countMessages(hook *test.Hook, msg string) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			n++
		}
	}
	return n
}

func TestNewRejectsNonPositiveSampleRate(t *testing.T) {
	if _, err := New(0, params.Default()); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestSilentUntilFirstHit(t *testing.T) {
	s, _ := newTestSynth(t, params.Default())
	buf := make([]float32, 1024)
	for i := range buf {
		buf[i] = 0.5
	}
	s.Process(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v before first hit", i, v)
		}
	}
	if s.Struck() {
		t.Fatal("struck before any hit")
	}
}

func TestHitProducesClippedStereo(t *testing.T) {
	v := params.Default()
	_ = v.Set(params.ExcitationForce, 500)
	s, hook := newTestSynth(t, v)
	s.Hit()
	buf := make([]float32, 48000)
	s.Process(buf)

	var energy float64
	var clipped bool
	for i := 0; i+1 < len(buf); i += 2 {
		l, r := buf[i], buf[i+1]
		if l != r {
			t.Fatalf("frame %d: channels differ l=%v r=%v", i/2, l, r)
		}
		if l < -1 || l > 1 {
			t.Fatalf("frame %d out of range: %v", i/2, l)
		}
		if math.Abs(float64(l)) == 1 {
			clipped = true
		}
		energy += math.Abs(float64(l))
	}
	if energy == 0 {
		t.Fatal("expected audio after hit")
	}
	if !clipped {
		t.Error("expected a 500 N strike to reach the clip limit")
	}
	if got := countMessages(hook, "plate hit"); got != 1 {
		t.Fatalf("plate hit logged %d times, want 1", got)
	}
}

func TestHitsWithinOneBlockCollapse(t *testing.T) {
	s, hook := newTestSynth(t, params.Default())
	for i := 0; i < 5; i++ {
		s.Hit()
		s.NoteOn(60, 100)
	}
	s.Process(make([]float32, 512))
	if got := countMessages(hook, "plate hit"); got != 1 {
		t.Fatalf("plate hit logged %d times, want 1", got)
	}
	s.Process(make([]float32, 512))
	if got := countMessages(hook, "plate hit"); got != 1 {
		t.Fatalf("hit flag not cleared: %d hits", got)
	}
}

func TestNoteOnZeroVelocityIgnored(t *testing.T) {
	s, _ := newTestSynth(t, params.Default())
	s.NoteOn(60, 0)
	s.Process(make([]float32, 256))
	if s.Struck() {
		t.Fatal("zero-velocity note-on struck the plate")
	}
	s.NoteOn(60, 1)
	s.Process(make([]float32, 256))
	if !s.Struck() {
		t.Fatal("note-on did not strike the plate")
	}
}

func TestRejectedHitKeepsPlayingPreviousGrid(t *testing.T) {
	s, hook := newTestSynth(t, params.Default())
	s.Hit()
	s.Process(make([]float32, 1024))
	before := s.Grid()

	v := s.Params()
	_ = v.Set(params.Material, float64(material.Iron))
	_ = v.Set(params.Thickness, 20)
	_ = v.Set(params.LengthX, 0.2)
	_ = v.Set(params.LengthY, 0.2)
	s.SetParams(v)
	s.Hit()
	buf := make([]float32, 1024)
	s.Process(buf)

	if got := countMessages(hook, "plate hit rejected, keeping previous grid"); got != 1 {
		t.Fatalf("rejection logged %d times, want 1", got)
	}
	if s.Grid() != before {
		t.Fatalf("grid changed after rejected hit: %+v", s.Grid())
	}
	var energy float64
	for _, x := range buf {
		energy += math.Abs(float64(x))
	}
	if energy == 0 {
		t.Fatal("audio stopped after rejected hit")
	}
}

func TestFailedPrepareKeepsPlaying(t *testing.T) {
	s, hook := newTestSynth(t, params.Default())
	s.Hit()
	s.Process(make([]float32, 1024))
	before := s.Grid()

	v := s.Params()
	_ = v.Set(params.Material, float64(material.Iron))
	_ = v.Set(params.Thickness, 20)
	_ = v.Set(params.LengthX, 0.2)
	_ = v.Set(params.LengthY, 0.2)
	s.SetParams(v)
	if err := s.Prepare(8000); err == nil {
		t.Fatal("expected prepare to fail on a coarse grid")
	}
	if got := countMessages(hook, "plate configuration rejected"); got != 1 {
		t.Fatalf("rejection logged %d times, want 1", got)
	}
	if s.SampleRate() != 48000 {
		t.Fatalf("sample rate = %d after failed prepare, want 48000", s.SampleRate())
	}
	if !s.Struck() {
		t.Fatal("failed prepare cleared the strike")
	}
	if s.Grid() != before {
		t.Fatalf("grid changed after failed prepare: %+v", s.Grid())
	}
	buf := make([]float32, 1024)
	s.Process(buf)
	var energy float64
	for _, x := range buf {
		energy += math.Abs(float64(x))
	}
	if energy == 0 {
		t.Fatal("audio stopped after failed prepare")
	}
}

func TestHitDoesNotAllocateWithDebugOff(t *testing.T) {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	s, err := New(48000, params.Default(), WithLogger(logger))
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	buf := make([]float32, 256)
	allocs := testing.AllocsPerRun(20, func() {
		s.Hit()
		s.Process(buf)
	})
	if allocs != 0 {
		t.Fatalf("hit block allocated %v times", allocs)
	}
	if !s.Struck() {
		t.Fatal("hit not accepted")
	}
}

func TestLengthChangeWaitsForHit(t *testing.T) {
	s, _ := newTestSynth(t, params.Default())
	s.Hit()
	s.Process(make([]float32, 512))
	before := s.Grid()

	if err := s.SetParam(params.LengthX, 1.0); err != nil {
		t.Fatal(err)
	}
	s.Process(make([]float32, 512))
	if s.Grid() != before {
		t.Fatalf("grid changed mid-sustain: %+v", s.Grid())
	}
	s.Hit()
	s.Process(make([]float32, 512))
	if s.Grid().Nx <= before.Nx {
		t.Fatalf("Nx = %d after hit, want more than %d", s.Grid().Nx, before.Nx)
	}
}

func TestPrepareReturnsToSilence(t *testing.T) {
	s, _ := newTestSynth(t, params.Default())
	s.Hit()
	s.Process(make([]float32, 512))
	s.Hit()
	if err := s.Prepare(44100); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if s.SampleRate() != 44100 {
		t.Fatalf("sample rate = %d", s.SampleRate())
	}
	buf := make([]float32, 512)
	s.Process(buf)
	for _, x := range buf {
		if x != 0 {
			t.Fatal("expected silence after prepare")
		}
	}
}

func TestRenderBlocksSchedulesHits(t *testing.T) {
	for _, tc := range []struct {
		name  string
		sched Schedule
		want  int
	}{
		{"same block", Schedule{0, 10, 200}, 1},
		{"two blocks", Schedule{0, 1000}, 2},
		{"unsorted", Schedule{3000, 0, 1500}, 3},
		{"past end", Schedule{0, 1 << 20}, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, hook := newTestSynth(t, params.Default())
			buf := make([]float32, 4096*2)
			s.RenderBlocks(buf, 256, tc.sched)
			if got := countMessages(hook, "plate hit"); got != tc.want {
				t.Fatalf("hits = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestProcessDoesNotAllocateWithoutHit(t *testing.T) {
	s, _ := newTestSynth(t, params.Default())
	s.Hit()
	buf := make([]float32, 256)
	s.Process(buf)
	allocs := testing.AllocsPerRun(50, func() {
		s.Process(buf)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %v times per block", allocs)
	}
}

func TestWorstCaseReservationCoversRange(t *testing.T) {
	nodes := worstCaseNodes(1.0 / 48000)
	if nodes < 68*68 {
		t.Fatalf("worst case nodes = %d, want at least %d", nodes, 68*68)
	}
	s, _ := newTestSynth(t, params.Default())
	if s.plate.Capacity() < nodes {
		t.Fatalf("capacity %d below worst case %d", s.plate.Capacity(), nodes)
	}
}
