// Command litekv-cli is the command-line client for litekv-server.
//
// Data commands (set, get, del, exists, shell) speak RESP to the server.
// info, health and aof rewrite use the HTTP admin surface. aof check,
// dump and backup work on log files directly.
package main

import (
	"os"

	"github.com/yndnr/litekv-go/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		command.PrintError("%v", err)
		os.Exit(1)
	}
}
