package main

import (
	"os"

	"github.com/abhisek/oulpan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
