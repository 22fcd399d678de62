// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts the things an operator of a door bot actually asks about:
// what arrived, what the bot decided, whether the controller saw its opens,
// and how hard the journal is churning. All methods are nil-safe so tests
// can wire components without a registry.
type Collector struct {
	callbacks *prometheus.CounterVec
	commands  *prometheus.CounterVec
	doorWaits *prometheus.CounterVec
	evictions prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sezam_callbacks_total",
			Help: "Inbound callback events by envelope type.",
		}, []string{"type"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sezam_commands_total",
			Help: "Bot command outcomes (granted, denied, duplicate, ignored).",
		}, []string{"outcome"}),
		doorWaits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sezam_door_waits_total",
			Help: "Controller long-poll results by whether an open was claimed.",
		}, []string{"opened"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sezam_journal_evicted_rows_total",
			Help: "Journal rows removed by maintenance eviction.",
		}),
	}

	reg.MustRegister(c.callbacks, c.commands, c.doorWaits, c.evictions)
	return c
}

func (c *Collector) RecordCallback(eventType string) {
	if c == nil {
		return
	}
	c.callbacks.WithLabelValues(eventType).Inc()
}

func (c *Collector) RecordCommand(outcome string) {
	if c == nil {
		return
	}
	c.commands.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordDoorWait(opened bool) {
	if c == nil {
		return
	}
	c.doorWaits.WithLabelValues(strconv.FormatBool(opened)).Inc()
}

func (c *Collector) RecordJournalEviction(rows int64) {
	if c == nil {
		return
	}
	c.evictions.Add(float64(rows))
}
