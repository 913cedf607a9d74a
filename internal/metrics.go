package internal

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "eebc_chat"

// Turn outcomes used as the "outcome" label
const (
	OutcomeAnswered  = "answered"
	OutcomeBackend   = "backend_error"
	OutcomeTransport = "transport_error"
	OutcomeParse     = "parse_error"
	OutcomeOther     = "error"
)

var (
	// turnsTotal counts finished turns by outcome
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "turns_total",
			Help:      "Total number of chat turns by outcome",
		},
		[]string{"outcome"},
	)

	// requestDuration measures the time spent waiting on the advisor
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of advisory backend requests in seconds",
			// answers involve retrieval plus an LLM call
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"outcome"},
	)
)

// TurnOutcome classifies the result of a turn for metrics
func TurnOutcome(err error) string {
	if err == nil {
		return OutcomeAnswered
	}
	var be *BackendError
	var te *TransportError
	var pe *ParseError
	switch {
	case errors.As(err, &be):
		return OutcomeBackend
	case errors.As(err, &te):
		return OutcomeTransport
	case errors.As(err, &pe):
		return OutcomeParse
	default:
		return OutcomeOther
	}
}

func observeTurn(err error, d time.Duration) {
	outcome := TurnOutcome(err)
	turnsTotal.WithLabelValues(outcome).Inc()
	requestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ServeMetrics exposes the default registry on addr until ctx is done
func ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		LogInfo("serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
