package main

import (
	"os"

	"github.com/goliatone/go-gitcontent/cmd/gitcontent/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
