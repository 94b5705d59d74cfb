// Package main is the entry point for the warden CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/wardenhq/warden/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exitErr *cli.ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
