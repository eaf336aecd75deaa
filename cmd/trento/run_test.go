package main

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/MaximVirta/trento/internal/collider"
	"github.com/MaximVirta/trento/internal/event"
	"github.com/MaximVirta/trento/internal/nucleon"
	"github.com/MaximVirta/trento/internal/nucleus"
	"github.com/MaximVirta/trento/internal/random"
)

// countingSink records every event it receives.
type countingSink struct {
	results []collider.Result
}

func (s *countingSink) Write(n int, res collider.Result, _ *event.Event) error {
	s.results = append(s.results, res)
	return nil
}

func protonConfig(t *testing.T, nevents int) collider.Config {
	t.Helper()

	stream := random.New(8)
	common, err := nucleon.NewCommon(nucleon.Params{Width: 0.5, CrossSection: 6.4}, stream)
	if err != nil {
		t.Fatalf("NewCommon() failed: %v", err)
	}
	nucA, err := nucleus.Create("p", 0, 0, 0, 0, 0, stream)
	if err != nil {
		t.Fatalf("Create(p) failed: %v", err)
	}
	nucB, err := nucleus.Create("p", 0, 0, 0, 0, 0, stream)
	if err != nil {
		t.Fatalf("Create(p) failed: %v", err)
	}

	return collider.Config{
		NucleusA: nucA,
		NucleusB: nucB,
		Common:   common,
		RNG:      stream,
		NEvents:  nevents,
		BMin:     0,
		BMax:     -1,
		Logger:   log.New(io.Discard),
	}
}

func TestWatchedRunFinishesAfterDetach(t *testing.T) {
	// Quitting the monitor view must not cut the run short: every event
	// still reaches the sinks and runWatched reports the run's outcome.
	const nevents = 200
	cfg := protonConfig(t, nevents)

	sink := &countingSink{}
	cfg.Sinks = []collider.Sink{sink}

	err := runWatched(cfg, nevents,
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)
	if err != nil {
		t.Fatalf("runWatched() failed: %v", err)
	}

	if len(sink.results) != nevents {
		t.Fatalf("sink received %d events, want %d", len(sink.results), nevents)
	}
	for i, res := range sink.results {
		if res.B < 0 {
			t.Fatalf("event %d: b = %g", i, res.B)
		}
	}
}
