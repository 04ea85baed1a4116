package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"monkey/compiler"
	"monkey/interpreter"
	"monkey/lexer"
	"monkey/object"
	"monkey/parser"
	"monkey/vm"
)

// runCmd executes a source file. By default it tree-walks the AST; the
// -c flag switches it to compile to bytecode and run it on the VM.
type runCmd struct {
	compile bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute Monkey code from a source file" }
func (*runCmd) Usage() string {
	return `run [-c] <file>:
  Execute a Monkey source file. -c runs it through the compiler and VM
  instead of the tree-walking interpreter.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.compile, "c", false, "compile to bytecode and run it on the VM instead of tree-walking")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lexing error: %v\n", err)
		return subcommands.ExitFailure
	}
	p := parser.Make(tokens)
	program, errs := p.Parse()
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return subcommands.ExitFailure
	}

	if r.compile {
		comp := compiler.New()
		bytecode, err := comp.Compile(program)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return subcommands.ExitFailure
		}
		machine := vm.New(bytecode)
		if err := machine.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	interp := interpreter.Make()
	result := interp.Interpret(program)
	if result != nil && result.Type() == object.ERROR_OBJ {
		fmt.Fprintln(os.Stderr, result.Inspect())
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
