package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artuross/fnlang/internal/commandinit"
	"github.com/artuross/fnlang/internal/defaults"
	"github.com/artuross/fnlang/internal/diagnostics/semconv"
	"github.com/artuross/fnlang/internal/lang/eval"
	"github.com/artuross/fnlang/internal/lang/parser"
	"github.com/artuross/fnlang/internal/lang/typecheck"
	"github.com/artuross/fnlang/internal/runtimeconfig"
	"github.com/artuross/fnlang/internal/util/timeutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace"
)

// ErrCommandFailed is returned for any failure that doesn't carry its own
// process exit code. cmd/interpreter/main.go prints it and os.Exit(1)s.
var ErrCommandFailed = errors.New("command failed")

var (
	ErrNoSourceFile     = errors.New("no source file given")
	ErrUnreadableSource = errors.New("unable to read source file")
	ErrEmptyLibrary     = errors.New("no functions parsed")
)

// ExitCodeError carries the interpreted program's own result as a process
// exit code. cmd/interpreter/main.go unwraps it with errors.As instead of
// always exiting 1, so `fnlang run` can report the program's own integer
// result as the real process exit status.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("program exited with code %d", e.Code)
}

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Parses, type-checks and evaluates a source file.",
		ArgsUsage: "<source-file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "Export OpenTelemetry traces for the run pipeline.",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Re-run whenever the source file's modification time changes.",
			},
		},
		Action: run,
	}
}

func run(cliCtx *cli.Context) error {
	ctx := cliCtx.Context

	runID := uuid.New()
	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().
		With().Str("command", "run").Str(semconv.RunID, runID.String()).Logger()

	cfg, err := runtimeconfig.Read(cliCtx, cliCtx.Args().Slice(), os.Getenv)
	if err != nil {
		fmt.Println("Input source file.")
		return ErrNoSourceFile
	}

	var traceProvider trace.TracerProvider = defaults.TraceProvider
	if cfg.Trace {
		provider, shutdown, err := commandinit.NewOpenTelemetry(ctx, "fnlang")
		if err != nil {
			logger.Error().Err(err).Msg("init OTEL provider")
			return ErrCommandFailed
		}
		defer shutdown(ctx)

		traceProvider = provider
	}

	tracer := traceProvider.Tracer("github.com/artuross/fnlang/internal/commands/run")

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	stopChan := make(chan os.Signal, 1)
	errInterrupted := errors.New("interrupted")

	go func() {
		signal.Notify(stopChan, os.Interrupt, syscall.SIGINT)

		<-stopChan
		logger.Info().Msg("received cancel signal")

		cancel(errInterrupted)
	}()

	runOnce := func() (int64, error) {
		return runPipeline(ctx, tracer, logger, cfg.SourcePath, os.Stdout)
	}

	if !cfg.Watch {
		result, err := runOnce()
		if err != nil {
			return err
		}

		return &ExitCodeError{Code: int(result)}
	}

	if err := watch(ctx, cfg.SourcePath, timeutil.Generic(timeutil.NewTicker), runOnce, logger); err != nil && !errors.Is(err, errInterrupted) {
		return fmt.Errorf("watch: %w", err)
	}

	return nil
}

// runPipeline drives the source → parser → AST → type checker → evaluator
// → exit integer pipeline once. Type-check errors are logged but never
// block evaluation: an ill-typed program still runs.
func runPipeline(ctx context.Context, tracer trace.Tracer, logger zerolog.Logger, path string, stdout io.Writer) (int64, error) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "run")
	defer span.End()

	logger = logger.With().Str(semconv.SourceFile, path).Logger()

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Unable to read file.")
		return 0, ErrUnreadableSource
	}

	_, parseSpan := tracer.Start(ctx, "parse")
	lib, parseErrs := parser.Parse(string(src))
	parseSpan.End()

	for _, parseErr := range parseErrs {
		logger.Warn().Str(semconv.Stage, "parse").Msg(parseErr)
	}

	if len(lib.Functions) == 0 {
		fmt.Println("Unable to parse AST.")
		return 0, ErrEmptyLibrary
	}

	_, checkSpan := tracer.Start(ctx, "typecheck")
	checkErrs := typecheck.Check(lib)
	checkSpan.End()

	for _, checkErr := range checkErrs {
		logger.Warn().Str(semconv.Stage, "typecheck").Msg(checkErr)
	}

	_, evalSpan := tracer.Start(ctx, "evaluate")
	result, err := eval.Run(lib, stdout)
	evalSpan.End()

	if err != nil {
		logger.Error().Err(err).Str(semconv.Stage, "evaluate").Msg("evaluation failed")
		return 0, ErrCommandFailed
	}

	logger.Info().Int64("result", result).Dur("elapsed", time.Since(start)).Msg("evaluation complete")

	return result, nil
}

// watch polls path's modification time on ticker's cadence and re-runs the
// pipeline whenever it changes, until ctx is done. Built on
// internal/util/timeutil so tests can drive it with a fake ticker instead
// of real wall-clock time.
func watch(ctx context.Context, path string, newTicker timeutil.NewTickerFunc, runOnce func() (int64, error), logger zerolog.Logger) error {
	ticker := newTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastMod time.Time
	if info, err := os.Stat(path); err == nil {
		lastMod = info.ModTime()
	}

	if _, err := runOnce(); err != nil {
		logger.Error().Err(err).Msg("run")
	}

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)

		case <-ticker.Chan():
			info, err := os.Stat(path)
			if err != nil {
				logger.Warn().Err(err).Msg("stat source file")
				continue
			}

			if !info.ModTime().After(lastMod) {
				continue
			}

			lastMod = info.ModTime()
			logger.Info().Msg("source file changed, re-running")

			if _, err := runOnce(); err != nil {
				logger.Error().Err(err).Msg("run")
			}
		}
	}
}
