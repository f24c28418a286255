// Package semconv names the attribute keys attached to the run command's
// log lines, mirroring how internal/log/semconv centralized the runner's own
// attribute names.
package semconv

const (
	// RunID is the correlation ID generated for one invocation of the run
	// command, attached to every log line it produces. Trace spans do not
	// carry it.
	RunID = "run_id"

	// SourceFile is the path of the .fn source file being processed.
	SourceFile = "source_file"

	// Stage identifies which pipeline stage (parse, typecheck, evaluate)
	// produced a log line.
	Stage = "stage"
)
