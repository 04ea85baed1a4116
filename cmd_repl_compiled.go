package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"monkey/compiler"
	"monkey/lexer"
	"monkey/object"
	"monkey/parser"
	"monkey/token"
	"monkey/vm"

	"github.com/google/subcommands"
)

// replCompiledCmd is the compiled REPL: each line is compiled to
// bytecode and run on the VM, rather than tree-walked.
type replCompiledCmd struct {
	disassemble  bool
	dumpBytecode bool
	dumpAST      bool
}

func (*replCompiledCmd) Name() string { return "crepl" }
func (*replCompiledCmd) Synopsis() string {
	return "Start a compiled (compiler + VM) REPL session"
}
func (*replCompiledCmd) Usage() string {
	return `crepl:
  Start an interactive compiled REPL session.
`
}

func (cmd *replCompiledCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", false, "print disassembled bytecode for each line")
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", false, "write each line's bytecode as hexadecimal to a .monkeybc file")
	f.BoolVar(&cmd.dumpAST, "dumpAST", false, "write each line's AST as JSON to ast.json")
}

func (cmd *replCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("Welcome to the Monkey programming language! (compiled REPL)")

	scanner := bufio.NewScanner(os.Stdin)
	symbolTable := compiler.NewSymbolTable()
	for i, def := range object.Builtins {
		symbolTable.DefineBuiltin(i, def.Name)
	}
	constants := []any{}
	globals := make([]object.Object, vm.GlobalsSize)

	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			fmt.Fprint(os.Stdout, ">>> ")
		} else {
			fmt.Fprint(os.Stdout, "... ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				fmt.Fprintf(os.Stderr, "💥 %s", err.Error())
				return subcommands.ExitFailure
			}
			return subcommands.ExitSuccess
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens, err := lexer.New(source).Scan()
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		p := parser.Make(tokens)
		program, parseErrs := p.Parse()
		if len(parseErrs) > 0 {
			// If every parse error sits at the EOF token's position, the
			// user simply hasn't finished typing yet; wait for more input
			// instead of reporting an error.
			if allParseErrorsAtEOF(parseErrs, tokens[len(tokens)-1]) {
				continue
			}
			fmt.Fprint(os.Stdout, "Parse error:\n")
			for _, pErr := range parseErrs {
				fmt.Fprintf(os.Stdout, "\t%v\n", pErr)
			}
			buffer.Reset()
			continue
		}

		comp := compiler.NewWithState(symbolTable, constants)
		bytecode, err := comp.Compile(program)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			buffer.Reset()
			continue
		}
		constants = bytecode.Constants

		if cmd.disassemble {
			fmt.Fprint(os.Stdout, bytecode.Instructions.Disassemble())
		}
		if cmd.dumpBytecode {
			if err := bytecode.DumpBytecode("repl.monkeybc"); err != nil {
				fmt.Fprintf(os.Stderr, "💥 dump bytecode error:\n\t%s", err.Error())
			}
		}
		if cmd.dumpAST {
			if err := parser.WriteASTJSONToFile(program, "ast.json"); err != nil {
				fmt.Fprintf(os.Stderr, "💥 dump AST error:\n\t%s", err.Error())
				continue
			}
		}

		machine := vm.NewWithGlobalsStore(bytecode, globals)
		if err := machine.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			buffer.Reset()
			continue
		}
		globals = machine.Globals()

		if top := machine.LastPoppedStackElem(); top != nil {
			fmt.Fprintln(os.Stdout, top.Inspect())
		}
		buffer.Reset()
	}
}

// isInputReady reports whether tokens form a block that is safe to
// compile: braces balance, and the last non-EOF token isn't one that
// necessarily expects more input to follow (an operator, a trailing
// keyword introducing a clause, an open paren/brace).
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			braceBalance++
		case token.RCUR:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.TokenType {
	case token.ASSIGN,
		token.ADD,
		token.SUB,
		token.MULT,
		token.DIV,
		token.BANG,
		token.EQUAL_EQUAL,
		token.NOT_EQUAL,
		token.LESS,
		token.LARGER,
		token.COMMA,
		token.COLON,
		token.LPA,
		token.LCUR,
		token.LBRACKET,
		token.IF,
		token.ELSE,
		token.FUNC,
		token.RETURN,
		token.LET:
		return false
	}

	return true
}

// lastNonEOF returns the last non-EOF token, or nil if there is none.
func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}

// allParseErrorsAtEOF reports whether every parse error is anchored at
// the EOF token's source position — the signature of input that is
// merely incomplete, not actually malformed.
func allParseErrorsAtEOF(parseErrs []error, eof token.Token) bool {
	if len(parseErrs) == 0 {
		return false
	}
	for _, parseErr := range parseErrs {
		pErr, ok := parseErr.(parser.ParseError)
		if !ok {
			return false
		}
		if pErr.Line != eof.Line || pErr.Column != eof.Column {
			return false
		}
	}
	return true
}
