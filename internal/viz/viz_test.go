package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/storage"
)

func testTrace(n int) dynamo.Trace {
	tr := make(dynamo.Trace, n)
	for i := range tr {
		tr[i] = dynamo.StepRecord{T: float64(i) * 0.01, Z: float64(i) / float64(n) * 10, DeltaV: 1e-6 * float64(i%7)}
	}
	return tr
}

func TestDownsample(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := downsample(values, 4)
	want := []float64{0, 3, 6, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
	if len(downsample(values, 20)) != 10 {
		t.Error("short series should be returned unchanged")
	}
}

func TestPlots(t *testing.T) {
	tr := testTrace(500)
	if out := DepthPlot(tr, 40, 8); !strings.Contains(out, "depth") {
		t.Errorf("depth plot missing caption: %q", out)
	}
	if out := VolumePlot(tr, 40, 8); !strings.Contains(out, "volume") {
		t.Errorf("volume plot missing caption: %q", out)
	}
	if DepthPlot(nil, 40, 8) != "" {
		t.Error("empty trace should render nothing")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}, 2); got != "▁█" {
		t.Errorf("Sparkline = %q", got)
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty Sparkline = %q", got)
	}
}

func TestBrowserNavigation(t *testing.T) {
	records := []storage.SummaryRecord{
		{Gains: control.Gains{K1: -1, K2: -1}, TimeConstant: 50, Diagnostic: "over,0.3"},
		{Gains: control.Gains{K1: -2, K2: -1}, TimeConstant: 30, Diagnostic: "over,0.1"},
	}
	loads := 0
	b := NewBrowser("run", records, func(g control.Gains) (dynamo.Trace, error) {
		loads++
		return testTrace(100), nil
	})

	msg := b.Init()()
	m, _ := b.Update(msg)
	b = m.(Browser)
	if b.trace == nil || loads != 1 {
		t.Fatal("expected initial trace load")
	}

	m, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	b = m.(Browser)
	if b.sort != sortTimeConstant {
		t.Errorf("expected time constant sort, got %s", b.sort)
	}
	if sel, _ := b.selected(); sel.TimeConstant != 30 {
		t.Errorf("expected fastest pair first, got %+v", sel)
	}
	m, _ = b.Update(cmd())
	b = m.(Browser)
	if !strings.Contains(b.View(), "over,0.1") {
		t.Error("view should list diagnostics")
	}

	m, _ = b.Update(tea.KeyMsg{Type: tea.KeyDown})
	b = m.(Browser)
	if b.cursor != 1 {
		t.Errorf("cursor = %d, want 1", b.cursor)
	}
	m, _ = b.Update(tea.KeyMsg{Type: tea.KeyDown})
	b = m.(Browser)
	if b.cursor != 1 {
		t.Error("cursor should stop at the last row")
	}
}

func TestBrowserLoadError(t *testing.T) {
	records := []storage.SummaryRecord{{Gains: control.Gains{K1: -1}}}
	b := NewBrowser("run", records, func(control.Gains) (dynamo.Trace, error) {
		return nil, errors.New("missing log")
	})
	m, _ := b.Update(b.Init()())
	if !strings.Contains(m.(Browser).View(), "missing log") {
		t.Error("expected load error in view")
	}
}

func TestBrowserEmpty(t *testing.T) {
	b := NewBrowser("run", nil, nil)
	if b.Init() != nil {
		t.Error("expected no load command")
	}
	if !strings.Contains(b.View(), "no accepted pairs") {
		t.Error("expected empty notice")
	}
}
