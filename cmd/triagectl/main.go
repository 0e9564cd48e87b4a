package main

import (
	"os"

	"github.com/vetlink-systems/vetlink-triage/internal/cli"
	"github.com/vetlink-systems/vetlink-triage/pkg/output"
)

func main() {
	if err := cli.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}
