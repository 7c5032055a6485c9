package main

import (
	"os"

	"github.com/scoutline/scoutline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
