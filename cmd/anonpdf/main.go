package main

import (
	"os"

	"github.com/rebeccax06/anonymize-pdf/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
