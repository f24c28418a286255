// Package runtimeconfig resolves the run command's configuration from
// CLI flags, positional arguments and the environment, the way
// internal/commands/configure/config does for the runner commands this was
// adapted from.
package runtimeconfig

import "fmt"

// Flagger is the subset of *cli.Context this package depends on.
type Flagger interface {
	Bool(name string) bool
}

// Config is the resolved configuration for one invocation of the run
// command.
type Config struct {
	SourcePath string
	Trace      bool
	Watch      bool
}

// Read resolves a Config from flags, positional args and the environment.
// A missing source path is reported as an error rather than a panic. The
// CLI layer turns it into the "Input source file." diagnostic.
func Read(flags Flagger, args []string, getEnv func(string) string) (*Config, error) {
	if len(args) < 1 || args[0] == "" {
		return nil, fmt.Errorf("source file argument is required")
	}

	cfg := Config{
		SourcePath: args[0],
		Trace:      flags.Bool("trace"),
		Watch:      flags.Bool("watch"),
	}

	if getEnv("FNLANG_TRACE") == "1" {
		cfg.Trace = true
	}

	return &cfg, nil
}
