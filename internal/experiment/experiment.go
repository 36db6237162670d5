package experiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/optim"
	"github.com/san-kum/buoysim/internal/physics"
	"github.com/san-kum/buoysim/internal/sim"
)

// Config describes one sweep.
type Config struct {
	Constants physics.Constants
	Criteria  []metrics.Criterion
	Begin     float64 // first simulated time [s]
	End       float64 // simulated times stay below End [s]
	Grid      optim.Grid
	Workers   int
}

// Accepted is a grid cell that passed every criterion.
type Accepted struct {
	Gains        control.Gains
	TimeConstant float64
	Arrived      bool // the trace crossed the time-constant threshold
	Verdicts     []metrics.Verdict
	Trace        dynamo.Trace
}

// Diagnostic joins the verdict diagnostics, e.g. "over,0.21".
func (a Accepted) Diagnostic() string {
	parts := make([]string, len(a.Verdicts))
	for i, v := range a.Verdicts {
		parts[i] = v.Diagnostic()
	}
	return strings.Join(parts, ",")
}

// Score is the first criterion's value; lower is better.
func (a Accepted) Score() float64 {
	if len(a.Verdicts) == 0 {
		return 0
	}
	return a.Verdicts[0].Value
}

// Sink receives accepted cells one at a time, in grid order.
type Sink interface {
	Accept(ctx context.Context, a Accepted) error
}

type SinkFunc func(ctx context.Context, a Accepted) error

func (f SinkFunc) Accept(ctx context.Context, a Accepted) error { return f(ctx, a) }

// Summary reports the outcome of a sweep. Best carries no trace.
type Summary struct {
	Evaluated int
	Accepted  int
	Best      *Accepted
	Elapsed   time.Duration
}

type Experiment struct {
	cfg   Config
	sinks []Sink
	log   logrus.FieldLogger
}

func New(cfg Config) *Experiment {
	return &Experiment{
		cfg: cfg,
		log: logrus.StandardLogger(),
	}
}

func (e *Experiment) AddSink(s Sink) { e.sinks = append(e.sinks, s) }

func (e *Experiment) SetLogger(log logrus.FieldLogger) { e.log = log }

func (e *Experiment) Config() Config { return e.cfg }

// Times is the shared simulation time grid: Begin to End in steps of Dt.
func (e *Experiment) Times() []float64 {
	return dynamo.Range(e.cfg.Begin, e.cfg.End, e.cfg.Constants.Dt)
}

func (e *Experiment) validate() error {
	if len(e.cfg.Criteria) == 0 {
		return fmt.Errorf("experiment: no acceptance criterion selected")
	}
	if e.cfg.Grid.Len() == 0 {
		return fmt.Errorf("experiment: empty search grid")
	}
	return e.cfg.Constants.Validate()
}

// Evaluate simulates one gain pair and applies every criterion. The
// returned Accepted is nil when any criterion rejects the trace.
func (e *Experiment) Evaluate(ctx context.Context, s *sim.Simulator, times []float64, g control.Gains) (*Accepted, error) {
	trace, err := s.Run(ctx, times, g)
	if err != nil {
		return nil, err
	}

	verdicts := make([]metrics.Verdict, 0, len(e.cfg.Criteria))
	for _, cr := range e.cfg.Criteria {
		v, err := cr.Evaluate(trace, e.cfg.Constants)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", g, err)
		}
		if !v.Passed {
			e.log.WithFields(logrus.Fields{"k1": g.K1, "k2": g.K2}).Debugf("rejected: %s", v.Diagnostic())
			return nil, nil
		}
		verdicts = append(verdicts, v)
	}

	tc, arrived := metrics.FindTimeConstant(trace, e.cfg.Constants)
	return &Accepted{
		Gains:        g,
		TimeConstant: tc,
		Arrived:      arrived,
		Verdicts:     verdicts,
		Trace:        trace,
	}, nil
}

// Run sweeps the grid. Every cell is simulated on the same time grid;
// accepted cells reach the sinks in grid order whatever order the workers
// finish in. A sink error stops the sweep.
func (e *Experiment) Run(ctx context.Context) (*Summary, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	times := e.Times()
	simulator := sim.New(e.cfg.Constants)
	search := optim.NewGridSearch(e.cfg.Grid, e.cfg.Workers).WithLogger(e.log)

	e.log.WithFields(logrus.Fields{
		"cells":    e.cfg.Grid.Len(),
		"samples":  len(times),
		"workers":  search.Workers(),
		"criteria": e.cfg.Criteria,
	}).Info("starting sweep")

	var evaluated atomic.Int64
	summary := &Summary{}
	em := newEmitter(e.cfg.Grid.Len(), func(a *Accepted) error {
		summary.Accepted++
		e.log.WithFields(logrus.Fields{
			"k1":            a.Gains.K1,
			"k2":            a.Gains.K2,
			"time_constant": a.TimeConstant,
		}).Infof("accepted: %s", a.Diagnostic())

		if summary.Best == nil || a.Score() < summary.Best.Score() {
			best := *a
			best.Trace = nil
			summary.Best = &best
		}
		for _, s := range e.sinks {
			if err := s.Accept(ctx, *a); err != nil {
				return fmt.Errorf("sink: %w", err)
			}
		}
		return nil
	})

	err := search.Search(ctx, func(ctx context.Context, idx int, g control.Gains) error {
		e.log.Debugf("now: %v, %v", g.K1, g.K2)
		acc, err := e.Evaluate(ctx, simulator, times, g)
		if err != nil {
			return err
		}
		evaluated.Add(1)
		return em.complete(idx, acc)
	})

	summary.Evaluated = int(evaluated.Load())
	summary.Elapsed = time.Since(start)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			e.log.Warnf("sweep canceled after %d of %d cells", summary.Evaluated, e.cfg.Grid.Len())
		}
		return summary, err
	}

	e.log.WithFields(logrus.Fields{
		"evaluated": summary.Evaluated,
		"accepted":  summary.Accepted,
		"elapsed":   summary.Elapsed,
	}).Info("sweep complete")

	return summary, nil
}

// emitter releases completed cells in index order.
type emitter struct {
	mu       sync.Mutex
	next     int
	finished []bool
	pending  map[int]*Accepted
	emit     func(*Accepted) error
}

func newEmitter(n int, emit func(*Accepted) error) *emitter {
	return &emitter{
		finished: make([]bool, n),
		pending:  make(map[int]*Accepted),
		emit:     emit,
	}
}

func (em *emitter) complete(idx int, a *Accepted) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	em.finished[idx] = true
	if a != nil {
		em.pending[idx] = a
	}

	for em.next < len(em.finished) && em.finished[em.next] {
		if a, ok := em.pending[em.next]; ok {
			delete(em.pending, em.next)
			if err := em.emit(a); err != nil {
				return err
			}
		}
		em.next++
	}
	return nil
}
