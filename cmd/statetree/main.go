// Command statetree loads YAML chart documents and drives, renders or checks
// them from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
