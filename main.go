package main

import (
	"os"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
