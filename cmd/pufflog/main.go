package main

import (
	"os"

	"github.com/pufflog/pufflog/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
