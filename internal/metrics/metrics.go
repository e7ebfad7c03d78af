package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups the store counters and gauges.
type Collectors struct {
	MessagesPushed   *prometheus.CounterVec
	MessagesConsumed *prometheus.CounterVec
	MessagesPeeked   *prometheus.CounterVec
	OperationErrors  *prometheus.CounterVec
	OpenChannels     prometheus.Gauge
}

// New builds the collectors and registers them on reg. A nil reg skips
// registration. Collectors already present on reg are reused.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		MessagesPushed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqlite_messages_pushed_total",
				Help: "Total number of messages pushed",
			},
			[]string{"topic"},
		),
		MessagesConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqlite_messages_consumed_total",
				Help: "Total number of messages removed by non-requeue reads",
			},
			[]string{"topic"},
		),
		MessagesPeeked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqlite_messages_peeked_total",
				Help: "Total number of messages returned by requeue reads",
			},
			[]string{"topic"},
		),
		OperationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqlite_operation_errors_total",
				Help: "Total number of failed store operations",
			},
			[]string{"operation"},
		),
		OpenChannels: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mqlite_open_channels",
				Help: "Number of channels currently attached to the store",
			},
		),
	}
	if reg == nil {
		return c, nil
	}

	var err error
	if c.MessagesPushed, err = register(reg, c.MessagesPushed); err != nil {
		return nil, err
	}
	if c.MessagesConsumed, err = register(reg, c.MessagesConsumed); err != nil {
		return nil, err
	}
	if c.MessagesPeeked, err = register(reg, c.MessagesPeeked); err != nil {
		return nil, err
	}
	if c.OperationErrors, err = register(reg, c.OperationErrors); err != nil {
		return nil, err
	}
	if c.OpenChannels, err = register(reg, c.OpenChannels); err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return collector, nil
}

// Pushed records n pushed messages on topic.
func (c *Collectors) Pushed(topic string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.MessagesPushed.WithLabelValues(topic).Add(float64(n))
}

// Consumed records n messages deleted after delivery.
func (c *Collectors) Consumed(topic string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.MessagesConsumed.WithLabelValues(topic).Add(float64(n))
}

// Peeked records n messages returned without deletion.
func (c *Collectors) Peeked(topic string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.MessagesPeeked.WithLabelValues(topic).Add(float64(n))
}

// Failed records a failed operation such as "push" or "delete".
func (c *Collectors) Failed(operation string) {
	if c == nil {
		return
	}
	c.OperationErrors.WithLabelValues(operation).Inc()
}

// SetOpenChannels publishes the live channel count.
func (c *Collectors) SetOpenChannels(n int) {
	if c == nil {
		return
	}
	c.OpenChannels.Set(float64(n))
}
