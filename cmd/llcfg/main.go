// Package main implements the llcfg CLI. It extracts control flow graphs
// from textual LLVM IR, serves the editor host protocol and manages the
// llcfgd daemon.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/triskellib/vscode/cmd/llcfg/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		if errors.Is(err, commands.ErrDiagnostics) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
