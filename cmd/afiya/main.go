package main

import (
	"os"

	"github.com/afiya/afiyacare/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
