package main

import (
	"os"

	"github.com/thamizhmedia/velpari-studio/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
