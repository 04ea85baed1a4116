package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"monkey/compiler"
	"monkey/lexer"
	"monkey/parser"
)

// emitBytecodeCmd compiles a source file and dumps its bytecode
// (disassembly text and/or hex) and optionally its AST, without
// running it.
type emitBytecodeCmd struct {
	disassemble  bool
	dumpBytecode bool
	dumpAST      bool
}

func (*emitBytecodeCmd) Name() string { return "emit" }
func (*emitBytecodeCmd) Synopsis() string {
	return "Emit the bytecode representation of a source file"
}
func (*emitBytecodeCmd) Usage() string {
	return `emit <file>:
  Compile a Monkey source file and dump its bytecode without running it.
`
}

func (cmd *emitBytecodeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", true, "print disassembled bytecode")
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", true, "write the encoded bytecode as hexadecimal to a .monkeybc file")
	f.BoolVar(&cmd.dumpAST, "dumpAST", false, "write the AST as JSON to a file")
}

func (cmd *emitBytecodeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	sourceFile := args[0]

	data, err := os.ReadFile(sourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file:\n\t%v\n", err.Error())
		return subcommands.ExitFailure
	}

	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lexing error: %v\n", err)
		return subcommands.ExitFailure
	}

	p := parser.Make(tokens)
	program, parseErrs := p.Parse()
	if len(parseErrs) > 0 {
		fmt.Fprint(os.Stderr, "💥 parsing error:\n")
		for _, pErr := range parseErrs {
			fmt.Fprintf(os.Stderr, "\t%v\n", pErr)
		}
		return subcommands.ExitFailure
	}

	comp := compiler.New()
	bytecode, err := comp.Compile(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 compilation error:\n\t%v\n", err)
		return subcommands.ExitFailure
	}

	baseName := strings.TrimSuffix(sourceFile, ".monkey")

	if cmd.disassemble {
		fmt.Print(bytecode.Instructions.Disassemble())
	}

	if cmd.dumpBytecode {
		if err := bytecode.DumpBytecode(baseName + ".monkeybc"); err != nil {
			fmt.Fprintf(os.Stderr, "💥 dump bytecode error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
	}

	if cmd.dumpAST {
		if err := parser.WriteASTJSONToFile(program, baseName+".ast.json"); err != nil {
			fmt.Fprintf(os.Stderr, "💥 dump AST error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
