package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&replCompiledCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&emitBytecodeCmd{}, "")

	// No subcommand and no file argument starts the tree-walking REPL,
	// per spec.md's "absent arguments start a REPL" behavior.
	if len(os.Args) < 2 {
		os.Args = append(os.Args, (&replCmd{}).Name())
	}

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
