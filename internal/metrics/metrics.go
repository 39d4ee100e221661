// Package metrics counts turns, token usage and ingested chunks.
package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Turn paths.
const (
	PathRule = "rule"
	PathRAG  = "rag"
	PathChat = "chat"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	Registry       *prometheus.Registry
	Turns          *prometheus.CounterVec
	Tokens         *prometheus.CounterVec
	Failures       *prometheus.CounterVec
	ChunksIngested prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ragchat",
			Name:      "turns_total",
			Help:      "Answered queries by path.",
		}, []string{"path"}),
		Tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ragchat",
			Name:      "tokens_total",
			Help:      "Estimated tokens by direction.",
		}, []string{"direction"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ragchat",
			Name:      "failures_total",
			Help:      "Failed queries by kind.",
		}, []string{"kind"}),
		ChunksIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ragchat",
			Name:      "chunks_ingested_total",
			Help:      "Chunks written to the retrieval store.",
		}),
	}
	m.Registry.MustRegister(m.Turns, m.Tokens, m.Failures, m.ChunksIngested)
	return m
}

// ObserveTurn records one answered query. Nil receivers are ignored.
func (m *Metrics) ObserveTurn(path string, in, out int) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(path).Inc()
	m.Tokens.WithLabelValues("input").Add(float64(in))
	m.Tokens.WithLabelValues("output").Add(float64(out))
}

// ObserveFailure records a failed query.
func (m *Metrics) ObserveFailure(kind string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(kind).Inc()
}

// ObserveIngest records n chunks written to the store.
func (m *Metrics) ObserveIngest(n int) {
	if m == nil {
		return
	}
	m.ChunksIngested.Add(float64(n))
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
