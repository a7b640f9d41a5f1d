// Package metrics exposes the node's Prometheus counters and a
// /metrics HTTP endpoint, wrapping prometheus/client_golang for the
// node's own daemon.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every counter the coordination fabric increments.
// All are labeled by chain_id and task_type so one node serving
// several chains still reports per-chain breakdowns.
type Metrics struct {
	PartialsSigned     *prometheus.CounterVec
	PartialsReceived   *prometheus.CounterVec
	PartialsPushFailed *prometheus.CounterVec
	FulfillmentsSent   *prometheus.CounterVec
	FulfillmentsFailed *prometheus.CounterVec
}

// New registers every counter against a fresh registry.
func New() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	labels := []string{"chain_id", "task_type"}
	return &Metrics{
		PartialsSigned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "randcast",
			Name:      "partials_signed_total",
			Help:      "Partial signatures this node has produced.",
		}, labels),
		PartialsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "randcast",
			Name:      "partials_received_total",
			Help:      "Partial signatures accepted by the committer RPC.",
		}, labels),
		PartialsPushFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "randcast",
			Name:      "partials_push_failed_total",
			Help:      "Committer pushes that exhausted their retry budget.",
		}, labels),
		FulfillmentsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "randcast",
			Name:      "fulfillments_submitted_total",
			Help:      "Aggregated signatures successfully submitted on-chain.",
		}, labels),
		FulfillmentsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "randcast",
			Name:      "fulfillments_failed_total",
			Help:      "Fulfillment submissions that errored or reverted.",
		}, labels),
	}, reg
}

// Serve starts an HTTP server exposing reg on endpoint until ctx is
// cancelled, intended to run on the FixedScheduler alongside the
// committer RPC server.
func Serve(ctx context.Context, endpoint string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: endpoint, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
