package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jsamuelsen11/lernago/internal/adapters/childprocess"
	"github.com/jsamuelsen11/lernago/internal/adapters/fsrepo"
	"github.com/jsamuelsen11/lernago/internal/adapters/git"
	"github.com/jsamuelsen11/lernago/internal/adapters/npmscript"
	"github.com/jsamuelsen11/lernago/internal/app/lifecycle"
	"github.com/jsamuelsen11/lernago/internal/platform/environment"
	"github.com/jsamuelsen11/lernago/internal/platform/hangcheck"
	"github.com/jsamuelsen11/lernago/internal/platform/logging"
	"github.com/jsamuelsen11/lernago/internal/platform/telemetry"
	"github.com/jsamuelsen11/lernago/internal/ports"
)

// Process-wide settings read from the environment.
const (
	envDispatcher   = "LERNA_DISPATCHER"
	envOtelExporter = "LERNA_OTEL_EXPORTER"
	envOtelEndpoint = "LERNA_OTEL_ENDPOINT"
)

const (
	serviceName = "lernago"

	// goroutineSlack tolerates runtime, signal and telemetry workers that
	// start after the baseline is taken.
	goroutineSlack = 8
)

// wiring holds the values created before the container.
type wiring struct {
	sink       *logging.Sink
	probe      environment.Probe
	metrics    *telemetry.Metrics
	dispatcher string
}

func newInjector(w wiring) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, w.sink)
	do.ProvideValue(injector, w.probe)
	do.ProvideValue(injector, w.metrics)

	do.Provide(injector, func(i do.Injector) (*childprocess.Invoker, error) {
		env := environment.Detect(do.MustInvoke[environment.Probe](i))
		return childprocess.New(
			childprocess.WithDispatcher(w.dispatcher),
			childprocess.WithColor(env.Color),
			childprocess.WithMetrics(do.MustInvoke[*telemetry.Metrics](i)),
			childprocess.WithLogger(do.MustInvoke[*logging.Sink](i).Logger()),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*npmscript.Runner, error) {
		return npmscript.NewRunner(do.MustInvoke[*childprocess.Invoker](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.GitChecker, error) {
		// git runs without the dispatcher and with its output hidden.
		quiet := childprocess.New(
			childprocess.WithOutput(io.Discard, io.Discard),
			childprocess.WithMetrics(do.MustInvoke[*telemetry.Metrics](i)),
		)
		return git.NewChecker(quiet), nil
	})

	do.Provide(injector, func(_ do.Injector) (*fsrepo.Loader, error) {
		return fsrepo.NewLoader(), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.HangRegistry, error) {
		registry := hangcheck.New()
		registry.Register(do.MustInvoke[*childprocess.Invoker](i))
		registry.Register(hangcheck.NewGoroutineChecker(goroutineSlack))
		return registry, nil
	})

	return injector
}

// lifecycleOptions resolves the shared lifecycle dependencies.
func lifecycleOptions(i do.Injector) ([]lifecycle.Option, error) {
	loader, err := do.Invoke[*fsrepo.Loader](i)
	if err != nil {
		return nil, fmt.Errorf("resolving project loader: %w", err)
	}
	gitChecker, err := do.Invoke[ports.GitChecker](i)
	if err != nil {
		return nil, fmt.Errorf("resolving git checker: %w", err)
	}
	registry, err := do.Invoke[ports.HangRegistry](i)
	if err != nil {
		return nil, fmt.Errorf("resolving hang registry: %w", err)
	}

	return []lifecycle.Option{
		lifecycle.WithVersion(version),
		lifecycle.WithProjectLoader(loader),
		lifecycle.WithPackageLoader(loader),
		lifecycle.WithGitChecker(gitChecker),
		lifecycle.WithHangRegistry(registry),
		lifecycle.WithSink(do.MustInvoke[*logging.Sink](i)),
		lifecycle.WithProbe(do.MustInvoke[environment.Probe](i)),
		lifecycle.WithMetrics(do.MustInvoke[*telemetry.Metrics](i)),
		lifecycle.WithOutput(os.Stdout, os.Stderr),
	}, nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// initTelemetry is a no-op unless exporter is set.
func initTelemetry(ctx context.Context, exporter, endpoint string) (*otelProviders, error) {
	if exporter == "" {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx, serviceName, exporter, endpoint, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx, serviceName, exporter, endpoint, os.Stderr)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{tracer: tp, meter: mp, metrics: metrics}, nil
}
