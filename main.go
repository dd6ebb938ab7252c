package main

import (
	"os"

	"github.com/firefly-engineering/deskbox/cmd"
	"github.com/firefly-engineering/deskbox/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
