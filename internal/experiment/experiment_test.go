package experiment_test

import (
	"context"
	"errors"
	"io"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/optim"
	"github.com/san-kum/buoysim/internal/physics"
	"github.com/san-kum/buoysim/internal/sim"
)

type recordingSink struct {
	mu       sync.Mutex
	accepted []experiment.Accepted
}

func (r *recordingSink) Accept(ctx context.Context, a experiment.Accepted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted = append(r.accepted, a)
	return nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var _ = Describe("Experiment", func() {
	var (
		cfg  experiment.Config
		grid optim.Grid
	)

	BeforeEach(func() {
		grid = optim.GridFromAxes(
			optim.Axis{Begin: -0.0002, End: 0.00005, Step: 0.0001},
			optim.Axis{Begin: -0.002, End: 0, Step: 0.001},
		)
		cfg = experiment.Config{
			Constants: physics.Default(),
			Criteria:  []metrics.Criterion{metrics.Overshoot},
			Begin:     0,
			End:       70,
			Grid:      grid,
			Workers:   4,
		}
	})

	newExperiment := func() *experiment.Experiment {
		exp := experiment.New(cfg)
		exp.SetLogger(quietLogger())
		return exp
	}

	It("shares one time grid stepped by dt", func() {
		times := newExperiment().Times()
		Expect(times).To(HaveLen(7001))
		Expect(times[0]).To(Equal(0.0))
		Expect(times[len(times)-1]).To(Equal(69.9999999999989))
	})

	Context("when the target is the starting depth", func() {
		BeforeEach(func() {
			cfg.Constants.ZTarget = 0
		})

		It("accepts every cell and delivers them in grid order", func() {
			sink := &recordingSink{}
			exp := newExperiment()
			exp.AddSink(sink)

			summary, err := exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Evaluated).To(Equal(grid.Len()))
			Expect(summary.Accepted).To(Equal(grid.Len()))

			Expect(sink.accepted).To(HaveLen(grid.Len()))
			for i, a := range sink.accepted {
				Expect(a.Gains).To(Equal(grid.At(i)))
				Expect(a.Trace).To(HaveLen(7001))
				Expect(a.Diagnostic()).To(Equal("over,0.0"))
			}
		})

		It("reports the best cell without its trace", func() {
			summary, err := newExperiment().Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Best).NotTo(BeNil())
			Expect(summary.Best.Gains).To(Equal(grid.At(0)))
			Expect(summary.Best.Trace).To(BeNil())
		})

		It("applies every selected criterion", func() {
			cfg.Criteria = []metrics.Criterion{metrics.Overshoot, metrics.MSE}
			sink := &recordingSink{}
			exp := newExperiment()
			exp.AddSink(sink)

			_, err := exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(sink.accepted[0].Verdicts).To(HaveLen(2))
			Expect(sink.accepted[0].Diagnostic()).To(Equal("over,0.0,mse,0.0"))
		})

		It("stops when a sink fails", func() {
			boom := errors.New("disk full")
			exp := newExperiment()
			exp.AddSink(experiment.SinkFunc(func(ctx context.Context, a experiment.Accepted) error {
				return boom
			}))

			_, err := exp.Run(context.Background())
			Expect(err).To(MatchError(boom))
		})
	})

	Context("with zero gains and a distant target", func() {
		BeforeEach(func() {
			cfg.Grid = optim.Grid{K1: []float64{0}, K2: []float64{0}}
		})

		It("rejects the cell without calling sinks", func() {
			sink := &recordingSink{}
			exp := newExperiment()
			exp.AddSink(sink)

			summary, err := exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Evaluated).To(Equal(1))
			Expect(summary.Accepted).To(BeZero())
			Expect(summary.Best).To(BeNil())
			Expect(sink.accepted).To(BeEmpty())
		})

		It("returns no acceptance from Evaluate", func() {
			exp := newExperiment()
			acc, err := exp.Evaluate(context.Background(), sim.New(cfg.Constants), exp.Times(), control.Gains{})
			Expect(err).NotTo(HaveOccurred())
			Expect(acc).To(BeNil())
		})
	})

	Context("with invalid input", func() {
		It("requires a criterion", func() {
			cfg.Criteria = nil
			_, err := newExperiment().Run(context.Background())
			Expect(err).To(HaveOccurred())
		})

		It("requires a non-empty grid", func() {
			cfg.Grid = optim.Grid{}
			_, err := newExperiment().Run(context.Background())
			Expect(err).To(HaveOccurred())
		})

		It("validates the constants", func() {
			cfg.Constants.Dt = 0
			_, err := newExperiment().Run(context.Background())
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("surfaces the overshoot precondition", func() {
			cfg.Constants.Z0 = 1
			_, err := newExperiment().Run(context.Background())
			Expect(errors.Is(err, dynamo.ErrPrecondition)).To(BeTrue())
		})
	})

	It("honours cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newExperiment().Run(ctx)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
