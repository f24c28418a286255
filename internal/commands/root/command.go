package root

import (
	astcmd "github.com/artuross/fnlang/internal/commands/ast"
	"github.com/artuross/fnlang/internal/commands/run"
	cli "github.com/urfave/cli/v2"
)

func NewCommand() *cli.App {
	return &cli.App{
		Name:  "fnlang",
		Usage: "Parses, type-checks and evaluates fnlang source files.",
		Commands: []*cli.Command{
			run.NewCommand(),
			astcmd.NewCommand(),
		},
	}
}
