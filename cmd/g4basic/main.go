// Command g4basic builds the apparatus geometry, checks it for placement
// hazards and prints the resulting volume tree.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
