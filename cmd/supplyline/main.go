package main

import (
	"os"

	"github.com/fieldmed/supplyline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
