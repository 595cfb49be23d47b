package main

import (
	"os"

	"github.com/postpilot/postpilot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
