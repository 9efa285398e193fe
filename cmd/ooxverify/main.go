// Command ooxverify is the command-line front end for the verification
// engine in package verify, mirroring the teacher's cmd/dwscript layout:
// a thin main that delegates straight to the cobra root command.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/ooxverify/cmd/ooxverify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
