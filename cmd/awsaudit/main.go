package main

import (
	"os"

	"github.com/awsaudit-dev/awsaudit/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
