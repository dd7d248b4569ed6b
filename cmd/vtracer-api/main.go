package main

import (
	"fmt"
	"os"

	"vtracer-api/internal/cli"
)

func main() {
	if err := cli.RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
