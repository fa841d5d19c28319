package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xtding233/craps-backend/internal/craps"
)

// Recorder counts engine events. It implements craps.Observer and is safe
// to share across concurrently running sessions.
type Recorder struct {
	reg *prometheus.Registry

	rolls       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	settled     *prometheus.CounterVec
	paid        *prometheus.CounterVec
	taken       *prometheus.CounterVec
	commission  prometheus.Counter
	runs        *prometheus.CounterVec
	runSeconds  prometheus.Histogram
}

var _ craps.Observer = (*Recorder)(nil)

// New registers every collector on a fresh registry, plus the Go and
// process collectors.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		rolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craps_rolls_total", Help: "dice rolls by total",
		}, []string{"total"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craps_transitions_total", Help: "phase transitions by event",
		}, []string{"event"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craps_wagers_settled_total", Help: "settled wagers by kind and outcome",
		}, []string{"kind", "status"}),
		paid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craps_paid_chips_total", Help: "chips paid to players, net of commission",
		}, []string{"kind"}),
		taken: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craps_taken_chips_total", Help: "stakes lost to the house",
		}, []string{"kind"}),
		commission: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craps_commission_chips_total", Help: "vig collected on buy and lay",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craps_simulations_total", Help: "simulation jobs by result",
		}, []string{"result"}),
		runSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "craps_simulation_seconds",
			Help:    "wall time per simulation job",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
	}
	r.reg.MustRegister(
		r.rolls, r.transitions, r.settled, r.paid, r.taken, r.commission, r.runs, r.runSeconds,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the registry in the text exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Recorder) OnRoll(roll craps.Roll, _ craps.Snapshot) {
	r.rolls.WithLabelValues(strconv.Itoa(roll.Total())).Inc()
}

func (r *Recorder) OnTransition(ev craps.TransitionEvent) {
	r.transitions.WithLabelValues(ev.Kind.String()).Inc()
}

func (r *Recorder) OnSettled(s craps.SettledWager) {
	kind := s.Wager.Kind.String()
	r.settled.WithLabelValues(kind, s.Wager.Status.String()).Inc()
	if s.Payout > 0 {
		r.paid.WithLabelValues(kind).Add(float64(s.Payout))
	}
	if s.Loss > 0 {
		r.taken.WithLabelValues(kind).Add(float64(s.Loss))
	}
	if s.Commission > 0 {
		r.commission.Add(float64(s.Commission))
	}
}

// ObserveRun records one finished simulation job.
func (r *Recorder) ObserveRun(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.runs.WithLabelValues(result).Inc()
	r.runSeconds.Observe(d.Seconds())
}
