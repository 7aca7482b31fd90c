package imglayout

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultPlannerOptions(t *testing.T) {
	o := defaultPlannerOptions()
	if o.cacheSize != 256 {
		t.Errorf("cacheSize = %d, want 256", o.cacheSize)
	}
	if o.workers != 0 {
		t.Errorf("workers = %d, want 0", o.workers)
	}
	if o.logger != nil {
		t.Error("default logger should be nil")
	}
}

func TestPlannerOptions(t *testing.T) {
	o := defaultPlannerOptions()
	for _, opt := range []PlannerOption{WithCache(-5), WithWorkers(3)} {
		opt(&o)
	}
	if o.cacheSize != 0 {
		t.Errorf("WithCache(-5) cacheSize = %d, want 0", o.cacheSize)
	}
	if o.workers != 3 {
		t.Errorf("workers = %d, want 3", o.workers)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := NewPlanner(mustCaps(t, Gen7), WithLogger(logger))
	defer p.Close()

	req := color2D(64, 64, UsageSampler)
	req.Width = 0
	if _, err := p.Plan(req); err == nil {
		t.Fatal("Plan accepted a zero-width request")
	}
	if !strings.Contains(buf.String(), "layout rejected") {
		t.Errorf("planner logger output %q", buf.String())
	}
}
