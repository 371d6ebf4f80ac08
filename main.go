// The main package for the tenk2pdf executable.
package main

import (
	"github.com/edgarkit/tenk2pdf/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
