package main

import (
	"os"

	"github.com/jac3km4/graphmat/cmd/graphmat/cmds"
	"github.com/jac3km4/graphmat/internal/logflags"
)

func main() {
	defer logflags.Close()
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
