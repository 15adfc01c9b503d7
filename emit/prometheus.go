package emit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusEmitter translates Events into Prometheus metrics rather
// than spans or log lines:
//
//   - fluxgraph_node_latency_ms (histogram, labels flow_id/node_id/status):
//     populated from event.Meta["duration_ms"] on "node_end" events.
//   - fluxgraph_node_errors_total (counter, labels flow_id/node_id):
//     incremented on "node_error" events.
//   - fluxgraph_ticks_total (counter, labels flow_id): incremented on
//     "tick_complete" events.
//   - fluxgraph_llm_cost_usd_total (counter, labels flow_id/node_id):
//     accumulated from event.Meta["cost_usd"] on any event carrying it;
//     neither the scheduler nor the catalog commands set that key.
type PrometheusEmitter struct {
	nodeLatency *prometheus.HistogramVec
	nodeErrors  *prometheus.CounterVec
	ticks       *prometheus.CounterVec
	llmCost     *prometheus.CounterVec
}

// NewPrometheusEmitter registers fluxgraph's metrics with registry. A
// nil registry uses prometheus.DefaultRegisterer.
func NewPrometheusEmitter(registry prometheus.Registerer) *PrometheusEmitter {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &PrometheusEmitter{
		nodeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fluxgraph",
			Name:      "node_latency_ms",
			Help:      "Node command execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"flow_id", "node_id", "status"}),
		nodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fluxgraph",
			Name:      "node_errors_total",
			Help:      "Cumulative node command execution errors",
		}, []string{"flow_id", "node_id"}),
		ticks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fluxgraph",
			Name:      "ticks_total",
			Help:      "Cumulative completed ticks per deployed flow",
		}, []string{"flow_id"}),
		llmCost: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fluxgraph",
			Name:      "llm_cost_usd_total",
			Help:      "Cumulative estimated USD cost of LLM completion commands",
		}, []string{"flow_id", "node_id"}),
	}
}

func (p *PrometheusEmitter) Emit(event Event) {
	switch event.Msg {
	case "node_end":
		status, _ := event.Meta["status"].(string)
		if status == "" {
			status = "success"
		}
		if ms, ok := asFloat(event.Meta["duration_ms"]); ok {
			p.nodeLatency.WithLabelValues(event.FlowID, event.NodeID, status).Observe(ms)
		}
	case "node_error":
		p.nodeErrors.WithLabelValues(event.FlowID, event.NodeID).Inc()
	case "tick_complete":
		p.ticks.WithLabelValues(event.FlowID).Inc()
	}

	if cost, ok := asFloat(event.Meta["cost_usd"]); ok {
		p.llmCost.WithLabelValues(event.FlowID, event.NodeID).Add(cost)
	}
}

func (p *PrometheusEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, event := range events {
		p.Emit(event)
	}
	return nil
}

// Flush is a no-op: Prometheus metrics are pulled by a scraper, not
// pushed, so there is nothing to flush.
func (p *PrometheusEmitter) Flush(context.Context) error { return nil }

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
