// Package main is the lernago entry point. It wires dependencies with
// samber/do v2, maps cobra flags onto lifecycle options, runs the selected
// command and turns its error into an exit code.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen11/lernago/internal/domain"
	"github.com/jsamuelsen11/lernago/internal/platform/environment"
	"github.com/jsamuelsen11/lernago/internal/platform/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const otelShutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	probe := environment.Host()
	sink := logging.NewSink(os.Stderr)

	otel, err := initTelemetry(ctx, os.Getenv(envOtelExporter), os.Getenv(envOtelEndpoint))
	if err != nil {
		fmt.Fprintf(os.Stderr, "lernago: initializing telemetry: %v\n", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
		defer cancel()
		if err := otel.Shutdown(shutdownCtx); err != nil {
			sink.Logger().Warn("telemetry shutdown error", slog.Any("error", err))
		}
	}()

	injector := newInjector(wiring{
		sink:       sink,
		probe:      probe,
		metrics:    otel.metrics,
		dispatcher: os.Getenv(envDispatcher),
	})

	root := newRootCommand(injector)
	err = root.ExecuteContext(ctx)
	return exitCode(err)
}

// exitCode maps a command error to the process exit status. Package
// failures exit with the failing process's code; everything else exits 1.
// Errors the lifecycle did not report, such as unknown flags, are printed
// here.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintf(os.Stderr, "lernago: %v\n", err)
		return 1
	}

	var pkgErr *domain.PackageError
	if errors.As(err, &pkgErr) && pkgErr.ExitCode > 0 {
		return pkgErr.ExitCode
	}
	return 1
}

// reportedError marks an error the lifecycle already logged.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }
