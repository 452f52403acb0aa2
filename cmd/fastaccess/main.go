// Command fastaccess is the voice-controlled application launcher: a
// listening daemon plus a small CLI for editing the command catalog.
package main

import (
	"os"

	"github.com/dmorales/fastaccess/cmd/fastaccess/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
