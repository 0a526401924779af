// Command memstorectl is an offline admin CLI for a memstore store root: it
// can run maintenance operations (dedupe, backup, legacy migration) without
// a running memstored process.
package main

import (
	"fmt"
	"os"

	"github.com/endlessblink/memstore/cmd/memstorectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
