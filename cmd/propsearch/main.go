package main

import (
	"fmt"
	"os"

	"propsearch/cmd/propsearch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
