package main

import (
	"os"

	"github.com/savfod/UnPaSt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
