// Package main provides the CLI for sqlgate, a validation gate for
// generated SQL.
package main

import (
	"errors"
	"os"

	"github.com/leapstack-labs/sqlgate/internal/cli"
	"github.com/leapstack-labs/sqlgate/internal/cli/commands"
)

func main() {
	if err := cli.Execute(); err != nil {
		if errors.Is(err, commands.ErrValidationFailed) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
