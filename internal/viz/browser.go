package viz

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/storage"
)

// TraceLoader fetches the detail log of one accepted pair.
type TraceLoader func(control.Gains) (dynamo.Trace, error)

type sortMode int

const (
	sortGrid sortMode = iota
	sortTimeConstant
	sortK1
	sortK2
)

func (s sortMode) String() string {
	return [...]string{"grid", "time constant", "k1", "k2"}[s]
}

const listHeight = 10

type traceLoadedMsg struct {
	gains control.Gains
	trace dynamo.Trace
	err   error
}

// Browser is a Bubble Tea model listing the accepted pairs of one run.
type Browser struct {
	title      string
	records    []storage.SummaryRecord
	order      []int
	cursor     int
	sort       sortMode
	load       TraceLoader
	trace      dynamo.Trace
	traceFor   control.Gains
	err        error
	showVolume bool
	width      int
}

func NewBrowser(title string, records []storage.SummaryRecord, load TraceLoader) Browser {
	b := Browser{title: title, records: records, load: load, width: DefaultPlotWidth}
	b.resort()
	return b
}

func (b Browser) Init() tea.Cmd { return b.loadSelected() }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		return b, nil
	case traceLoadedMsg:
		if sel, ok := b.selected(); ok && sel.Gains == msg.gains {
			b.trace, b.traceFor, b.err = msg.trace, msg.gains, msg.err
		}
		return b, nil
	case tea.KeyMsg:
		return b.handleKey(msg)
	}
	return b, nil
}

func (b Browser) handleKey(msg tea.KeyMsg) (Browser, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return b, tea.Quit
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
			return b, b.loadSelected()
		}
	case "down", "j":
		if b.cursor < len(b.order)-1 {
			b.cursor++
			return b, b.loadSelected()
		}
	case "s":
		b.sort = (b.sort + 1) % 4
		b.resort()
		return b, b.loadSelected()
	case "v":
		b.showVolume = !b.showVolume
	}
	return b, nil
}

func (b *Browser) resort() {
	b.order = make([]int, len(b.records))
	for i := range b.order {
		b.order[i] = i
	}
	key := func(i int) float64 {
		r := b.records[i]
		switch b.sort {
		case sortTimeConstant:
			return r.TimeConstant
		case sortK1:
			return r.Gains.K1
		case sortK2:
			return r.Gains.K2
		}
		return float64(i)
	}
	sort.SliceStable(b.order, func(i, j int) bool { return key(b.order[i]) < key(b.order[j]) })
	b.cursor = 0
}

func (b Browser) selected() (storage.SummaryRecord, bool) {
	if len(b.order) == 0 {
		return storage.SummaryRecord{}, false
	}
	return b.records[b.order[b.cursor]], true
}

func (b Browser) loadSelected() tea.Cmd {
	sel, ok := b.selected()
	if !ok || b.load == nil {
		return nil
	}
	load := b.load
	return func() tea.Msg {
		tr, err := load(sel.Gains)
		return traceLoadedMsg{gains: sel.Gains, trace: tr, err: err}
	}
}

func (b Browser) View() string {
	var s strings.Builder
	s.WriteString(Header.Render(b.title) + "\n")
	s.WriteString(Subtle.Render(fmt.Sprintf("%d accepted, sorted by %s", len(b.records), b.sort)) + "\n\n")

	if len(b.order) == 0 {
		s.WriteString("no accepted pairs\n")
		s.WriteString(KeyHint.Render("q quit") + "\n")
		return s.String()
	}

	first := 0
	if b.cursor >= listHeight {
		first = b.cursor - listHeight + 1
	}
	for i := first; i < len(b.order) && i < first+listHeight; i++ {
		r := b.records[b.order[i]]
		line := fmt.Sprintf("%14s %14s  tc=%-8s %s",
			dynamo.FormatFloat(r.Gains.K1),
			dynamo.FormatFloat(r.Gains.K2),
			dynamo.FormatFloat(r.TimeConstant),
			r.Diagnostic)
		if i == b.cursor {
			s.WriteString(Selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	s.WriteString("\n")

	sel, _ := b.selected()
	switch {
	case b.err != nil && b.traceFor == sel.Gains:
		s.WriteString(StatusFail.Render(b.err.Error()) + "\n")
	case b.trace != nil && b.traceFor == sel.Gains:
		width := min(max(b.width-12, 20), DefaultPlotWidth)
		if b.showVolume {
			s.WriteString(VolumePlot(b.trace, width, DefaultPlotHeight) + "\n")
		} else {
			s.WriteString(DepthPlot(b.trace, width, DefaultPlotHeight) + "\n")
		}
	default:
		s.WriteString(Subtle.Render("loading...") + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("j/k move  s sort  v depth/volume  q quit") + "\n")
	return s.String()
}

// Browse runs the browser until the user quits.
func Browse(title string, records []storage.SummaryRecord, load TraceLoader) error {
	_, err := tea.NewProgram(NewBrowser(title, records, load), tea.WithAltScreen()).Run()
	return err
}
