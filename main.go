package main

import (
	"os"

	"github.com/thiagokokada/asyncgit-go/cmd"
)

func main() {
	// cobra already printed the error.
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
