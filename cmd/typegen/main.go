package main

import (
	"os"

	"github.com/cottand/typegen/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
