package abort

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	gokitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

// Names for our metrics
const (
	TriggersCounter  = "triggers_total"
	ScheduledCounter = "deferred_triggers_scheduled_total"
	DisposalsCounter = "disposals_total"
	ResetsCounter    = "resets_total"
)

// Measures describes the metrics updated by a Controller. Any nil field discards its updates.
//
// A single Measures may be shared by any number of controllers.
type Measures struct {
	// Triggers counts transitions of a controller's signal from not-aborted to aborted
	Triggers metrics.Counter
	// Scheduled counts calls to TriggerAfter that scheduled a deferred trigger
	Scheduled metrics.Counter
	// Disposals counts controllers disposed
	Disposals metrics.Counter
	// Resets counts successful calls to TryReset
	Resets metrics.Counter
}

func (m *Measures) orDiscard() Measures {
	var out Measures
	if m != nil {
		out = *m
	}

	for _, c := range []*metrics.Counter{&out.Triggers, &out.Scheduled, &out.Disposals, &out.Resets} {
		if *c == nil {
			*c = discard.NewCounter()
		}
	}
	return out
}

// NewPrometheusMeasures creates Measures backed by prometheus counters, registered with r. If r is
// nil, prometheus.DefaultRegisterer is used.
func NewPrometheusMeasures(r prometheus.Registerer, namespace, subsystem string) (*Measures, error) {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}

	newCounter := func(name, help string) (metrics.Counter, error) {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, []string{})

		if err := r.Register(vec); err != nil {
			return nil, err
		}
		return gokitprometheus.NewCounter(vec), nil
	}

	var (
		m   Measures
		err error
	)

	if m.Triggers, err = newCounter(TriggersCounter, "Number of signals aborted by a controller"); err != nil {
		return nil, err
	}
	if m.Scheduled, err = newCounter(ScheduledCounter, "Number of deferred triggers scheduled"); err != nil {
		return nil, err
	}
	if m.Disposals, err = newCounter(DisposalsCounter, "Number of controllers disposed"); err != nil {
		return nil, err
	}
	if m.Resets, err = newCounter(ResetsCounter, "Number of controllers reset with a fresh signal"); err != nil {
		return nil, err
	}

	return &m, nil
}
