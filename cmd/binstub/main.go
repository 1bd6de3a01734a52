// Command binstub is the self-extracting loader compiled once per target
// triple and embedded by binpress. On success it never returns: the process
// is replaced by the wrapped binary.
package main

import (
	"fmt"
	"os"

	"github.com/meigma/binpress/loader"
)

func main() {
	if err := loader.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "binstub: %v\n", err)
		os.Exit(1)
	}
}
