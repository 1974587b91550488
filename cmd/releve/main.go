package main

import (
	"os"

	"github.com/releve-dev/releve/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
