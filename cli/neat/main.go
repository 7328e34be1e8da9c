package main

import (
	"os"

	neatcmder "github.com/papercomputeco/neat/cmd/neat"
)

func main() {
	cmd := neatcmder.NewNeatCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
