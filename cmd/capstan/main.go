package main

import (
	"os"

	"github.com/capstanhq/capstan/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
