package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"monkey/interpreter"
	"monkey/lexer"
	"monkey/parser"
)

// replCmd implements the tree-walking REPL.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start a tree-walking REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive tree-walking REPL session.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("Welcome to the Monkey programming language!")
	repl(os.Stdin, os.Stdout)
	return subcommands.ExitSuccess
}

// repl reads one line at a time, evaluates it against a single
// interpreter instance so let-bindings persist across lines, and
// prints the resulting value.
func repl(in io.Reader, out io.Writer) {
	interp := interpreter.Make()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      ">>> ",
		Stdin:       io.NopCloser(in),
		Stdout:      out,
		HistoryFile: "",
	})
	if err != nil {
		replScanner(in, out, interp)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		if line == "exit" {
			return
		}
		if line == "" {
			continue
		}
		rl.SaveHistory(line)
		evalLine(out, interp, line)
	}
}

// replScanner is the bufio.Scanner fallback used when readline cannot
// put the terminal into raw mode (stdin is a pipe or file, not a tty).
func replScanner(in io.Reader, out io.Writer, interp *interpreter.TreeWalkInterpreter) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "exit" {
			return
		}
		if line == "" {
			continue
		}
		evalLine(out, interp, line)
	}
}

func evalLine(out io.Writer, interp *interpreter.TreeWalkInterpreter, line string) {
	tokens, err := lexer.New(line).Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	p := parser.Make(tokens)
	program, errs := p.Parse()
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return
	}
	result := interp.Interpret(program)
	if result != nil {
		fmt.Fprintln(out, result.Inspect())
	}
}
