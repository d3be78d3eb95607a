package main

import (
	"os"

	"github.com/revise-app/revise/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
