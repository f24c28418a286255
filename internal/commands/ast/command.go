// Package ast implements the `fnlang ast` debug command: it parses a
// source file and pretty-prints the resulting AST instead of evaluating
// it. Useful while working on the grammar itself.
package ast

import (
	"fmt"
	"os"

	"github.com/artuross/fnlang/internal/lang/parser"
	"github.com/kr/pretty"
	cli "github.com/urfave/cli/v2"
)

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "ast",
		Usage:     "Parses a source file and prints its AST without evaluating it.",
		ArgsUsage: "<source-file>",
		Action:    run,
	}
}

func run(cliCtx *cli.Context) error {
	path := cliCtx.Args().First()
	if path == "" {
		fmt.Println("Input source file.")
		return fmt.Errorf("source file argument is required")
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Unable to read file.")
		return fmt.Errorf("read source file: %w", err)
	}

	lib, errs := parser.Parse(string(src))
	for _, parseErr := range errs {
		fmt.Fprintln(os.Stderr, parseErr)
	}

	if len(lib.Functions) == 0 {
		fmt.Println("Unable to parse AST.")
		return fmt.Errorf("no functions parsed")
	}

	pretty.Println(lib)

	return nil
}
