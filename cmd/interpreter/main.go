package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/artuross/fnlang/internal/commands/root"
	"github.com/artuross/fnlang/internal/commands/run"
)

func main() {
	rootCmd := root.NewCommand()

	if err := rootCmd.Run(os.Args); err != nil {
		var exitErr *run.ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		fmt.Println(err)
		os.Exit(1)
	}
}
