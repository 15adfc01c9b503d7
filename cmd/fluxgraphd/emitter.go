package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/fluxgraph/config"
	"github.com/dshills/fluxgraph/emit"
)

// newEmitter builds the emit.Emitter cfg.Kind names, the single switch
// point serve routes through instead of hardcoding a log emitter.
// metricsHandler is non-nil only for "prometheus", where it should be
// mounted so a scraper can reach the registered metrics; shutdown
// releases any resources the emitter opened (the otel SDK tracer
// provider, in particular) and is safe to call on
// every kind.
func newEmitter(cfg config.EmitterConfig) (emitter emit.Emitter, metricsHandler http.Handler, shutdown func(context.Context) error, err error) {
	noopShutdown := func(context.Context) error { return nil }

	switch strings.ToLower(cfg.Kind) {
	case "", "log":
		return emit.NewLogEmitter(os.Stderr, false), nil, noopShutdown, nil
	case "null":
		return emit.NewNullEmitter(), nil, noopShutdown, nil
	case "prometheus":
		registry := prometheus.NewRegistry()
		e := emit.NewPrometheusEmitter(registry)
		handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		return e, handler, noopShutdown, nil
	case "otel":
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		tracer := tp.Tracer("fluxgraphd")
		return emit.NewOTelEmitter(tracer), nil, tp.Shutdown, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown emitter kind %q", cfg.Kind)
	}
}
