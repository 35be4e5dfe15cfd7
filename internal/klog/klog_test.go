package klog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerWritesMessageAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.Info("pmm initialized", String("zone", "normal"), Int("frames", 4096))

	out := buf.String()
	for _, want := range []string{"[INFO]", "pmm initialized", "zone=normal", "frames=4096"} {
		if !strings.Contains(out, want) {
			t.Errorf("Handle() output missing %q, got: %s", want, out)
		}
	}
}

func TestHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	prev := Level.Level()
	Level.Set(Warn)
	defer Level.Set(prev)

	logger.Info("should not appear")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("Handle() logged below configured level: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("Handle() dropped a record at the configured level: %s", out)
	}
}

func TestHandlerWithAttrsIsCumulative(t *testing.T) {
	var buf bytes.Buffer
	base := NewHandler(&buf)
	derived := base.WithAttrs([]Attr{String("cpu", "0")})
	if derived == base {
		t.Fatalf("WithAttrs() returned the same handler instance")
	}

	slog.New(derived.WithAttrs([]Attr{String("zone", "dma")})).Info("attrs")
	out := buf.String()
	for _, want := range []string{"cpu=0", "zone=dma"} {
		if !strings.Contains(out, want) {
			t.Errorf("twice-derived handler output missing %q, got: %s", want, out)
		}
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Errorf("Default() returned different loggers across calls")
	}
}
