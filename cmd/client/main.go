package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/boardkeeper/internal/client/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
