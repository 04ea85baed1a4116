package compiler

import (
	"fmt"

	"monkey/ast"
	"monkey/object"
)

// EmittedInstruction records an opcode this compiler just emitted and
// its byte position, so the last two emitted instructions can be
// inspected (and the very last rewritten) without re-scanning the
// instruction stream — used by the implicit-return peephole below.
type EmittedInstruction struct {
	Opcode   Opcode
	Position int
}

// CompilationScope is one entry in the compiler's scope stack: every
// function literal compiles into its own scope so its instructions
// can be sliced out whole once the literal is fully compiled.
type CompilationScope struct {
	instructions        Instructions
	lastInstruction     EmittedInstruction
	previousInstruction EmittedInstruction
}

// Compiler lowers an ast.Program to Bytecode. It implements
// ast.StmtVisitor and ast.ExpressionVisitor directly: compiling a node
// pushes its instructions onto the current scope and, for expressions,
// leaves exactly one value on the VM's stack once executed.
type Compiler struct {
	constants []any

	symbolTable *SymbolTable

	scopes     []CompilationScope
	scopeIndex int

	err error
}

// New creates a compiler with a fresh global symbol table and the
// builtin registry pre-bound under BuiltinScope (object.Builtins'
// indices, so GetBuiltin operands line up with the VM's own registry).
func New() *Compiler {
	mainScope := CompilationScope{instructions: Instructions{}}

	symbolTable := NewSymbolTable()
	for i, def := range object.Builtins {
		symbolTable.DefineBuiltin(i, def.Name)
	}

	return &Compiler{
		constants:   []any{},
		symbolTable: symbolTable,
		scopes:      []CompilationScope{mainScope},
		scopeIndex:  0,
	}
}

// NewWithState creates a compiler that continues compiling into an
// existing constant pool and global symbol table — used by the
// compiled REPL, where each line is compiled and run against the
// state left behind by the previous one.
func NewWithState(symbolTable *SymbolTable, constants []any) *Compiler {
	c := New()
	c.symbolTable = symbolTable
	c.constants = constants
	return c
}

// Compile compiles an entire program and returns the resulting
// Bytecode, or the first compile error encountered.
func (c *Compiler) Compile(program ast.Program) (Bytecode, error) {
	for _, stmt := range program.Statements {
		stmt.Accept(c)
		if c.err != nil {
			return Bytecode{}, c.err
		}
	}
	return c.Bytecode(), nil
}

// Bytecode returns the compiler's current top-level instructions and
// constant pool, usable even mid-REPL-session before a full program
// has been assembled.
func (c *Compiler) Bytecode() Bytecode {
	return Bytecode{
		Instructions: c.currentInstructions(),
		Constants:    c.constants,
	}
}

func (c *Compiler) fail(format string, a ...any) {
	if c.err == nil {
		c.err = SemanticError{Message: fmt.Sprintf(format, a...)}
	}
}

func (c *Compiler) currentInstructions() Instructions {
	return c.scopes[c.scopeIndex].instructions
}

func (c *Compiler) addConstant(obj any) int {
	c.constants = append(c.constants, obj)
	return len(c.constants) - 1
}

func (c *Compiler) emit(op Opcode, operands ...int) int {
	ins := Make(op, operands...)
	pos := c.addInstruction(ins)

	c.setLastInstruction(op, pos)
	return pos
}

func (c *Compiler) addInstruction(ins []byte) int {
	pos := len(c.currentInstructions())
	updated := append(c.currentInstructions(), ins...)
	c.scopes[c.scopeIndex].instructions = updated
	return pos
}

func (c *Compiler) setLastInstruction(op Opcode, pos int) {
	previous := c.scopes[c.scopeIndex].lastInstruction
	last := EmittedInstruction{Opcode: op, Position: pos}

	c.scopes[c.scopeIndex].previousInstruction = previous
	c.scopes[c.scopeIndex].lastInstruction = last
}

func (c *Compiler) lastInstructionIs(op Opcode) bool {
	if len(c.currentInstructions()) == 0 {
		return false
	}
	return c.scopes[c.scopeIndex].lastInstruction.Opcode == op
}

func (c *Compiler) removeLastPop() {
	last := c.scopes[c.scopeIndex].lastInstruction
	previous := c.scopes[c.scopeIndex].previousInstruction

	c.scopes[c.scopeIndex].instructions = c.currentInstructions()[:last.Position]
	c.scopes[c.scopeIndex].lastInstruction = previous
}

// replaceLastPopWithReturn rewrites a trailing OP_POP into
// OP_RETURN_VALUE so a function body's final expression statement
// becomes its implicit return value rather than a discarded value.
func (c *Compiler) replaceLastPopWithReturn() {
	lastPos := c.scopes[c.scopeIndex].lastInstruction.Position
	newInstruction := Make(OP_RETURN_VALUE)
	c.replaceInstruction(lastPos, newInstruction)
	c.scopes[c.scopeIndex].lastInstruction.Opcode = OP_RETURN_VALUE
}

func (c *Compiler) replaceInstruction(pos int, newInstruction []byte) {
	ins := c.currentInstructions()
	for i := 0; i < len(newInstruction); i++ {
		ins[pos+i] = newInstruction[i]
	}
}

// changeOperand rewrites the operand of the (fixed-width) instruction
// at opPos in place — used to patch a forward jump's target once the
// jump's destination is known.
func (c *Compiler) changeOperand(opPos int, operand int) {
	op := Opcode(c.currentInstructions()[opPos])
	newInstruction := Make(op, operand)
	c.replaceInstruction(opPos, newInstruction)
}

func (c *Compiler) enterScope() {
	scope := CompilationScope{instructions: Instructions{}}
	c.scopes = append(c.scopes, scope)
	c.scopeIndex++
	c.symbolTable = NewEnclosedSymbolTable(c.symbolTable)
}

func (c *Compiler) leaveScope() Instructions {
	instructions := c.currentInstructions()

	c.scopes = c.scopes[:len(c.scopes)-1]
	c.scopeIndex--

	c.symbolTable = c.symbolTable.Outer
	return instructions
}

func (c *Compiler) loadSymbol(s Symbol) {
	switch s.Scope {
	case GlobalScope:
		c.emit(OP_GET_GLOBAL, s.Index)
	case LocalScope:
		c.emit(OP_GET_LOCAL, s.Index)
	case BuiltinScope:
		c.emit(OP_GET_BUILTIN, s.Index)
	case FreeScope:
		c.emit(OP_GET_FREE, s.Index)
	case FunctionScope:
		c.emit(OP_CURRENT_CLOSURE)
	}
}

// --- Statements ---

func (c *Compiler) VisitLetStatement(stmt ast.LetStatement) any {
	// Define before compiling the value so a function literal's own
	// name resolves inside its own body, enabling self-reference;
	// the VM opcode path for a Function-scope symbol pushes the
	// currently-executing closure rather than reading an uninitialized
	// slot, so there is no "use before defined" hazard here.
	symbol := c.symbolTable.Define(stmt.Name.Value)

	if fn, ok := stmt.Value.(ast.FunctionLiteral); ok {
		fn.Name = stmt.Name.Value
		fn.Accept(c)
	} else {
		stmt.Value.Accept(c)
	}
	if c.err != nil {
		return nil
	}

	if symbol.Scope == GlobalScope {
		c.emit(OP_SET_GLOBAL, symbol.Index)
	} else {
		c.emit(OP_SET_LOCAL, symbol.Index)
	}
	return nil
}

func (c *Compiler) VisitReturnStatement(stmt ast.ReturnStatement) any {
	stmt.ReturnValue.Accept(c)
	if c.err != nil {
		return nil
	}
	c.emit(OP_RETURN_VALUE)
	return nil
}

func (c *Compiler) VisitExpressionStatement(stmt ast.ExpressionStatement) any {
	stmt.Expression.Accept(c)
	if c.err != nil {
		return nil
	}
	c.emit(OP_POP)
	return nil
}

func (c *Compiler) VisitBlockStatement(stmt ast.BlockStatement) any {
	for _, s := range stmt.Statements {
		s.Accept(c)
		if c.err != nil {
			return nil
		}
	}
	return nil
}

// --- Expressions ---

func (c *Compiler) VisitIdentifier(expr ast.Identifier) any {
	symbol, ok := c.symbolTable.Resolve(expr.Value)
	if !ok {
		c.fail("undefined variable %s", expr.Value)
		return nil
	}
	c.loadSymbol(symbol)
	return nil
}

func (c *Compiler) VisitIntegerLiteral(expr ast.IntegerLiteral) any {
	integer := &object.Integer{Value: expr.Value}
	c.emit(OP_CONSTANT, c.addConstant(integer))
	return nil
}

func (c *Compiler) VisitBooleanLiteral(expr ast.BooleanLiteral) any {
	if expr.Value {
		c.emit(OP_TRUE)
	} else {
		c.emit(OP_FALSE)
	}
	return nil
}

func (c *Compiler) VisitStringLiteral(expr ast.StringLiteral) any {
	str := &object.String{Value: expr.Value}
	c.emit(OP_CONSTANT, c.addConstant(str))
	return nil
}

func (c *Compiler) VisitArrayLiteral(expr ast.ArrayLiteral) any {
	for _, el := range expr.Elements {
		el.Accept(c)
		if c.err != nil {
			return nil
		}
	}
	c.emit(OP_ARRAY, len(expr.Elements))
	return nil
}

func (c *Compiler) VisitHashLiteral(expr ast.HashLiteral) any {
	for i, key := range expr.Keys {
		key.Accept(c)
		if c.err != nil {
			return nil
		}
		expr.Values[i].Accept(c)
		if c.err != nil {
			return nil
		}
	}

	c.emit(OP_HASH, len(expr.Keys)*2)
	return nil
}

func (c *Compiler) VisitPrefixExpression(expr ast.PrefixExpression) any {
	expr.Right.Accept(c)
	if c.err != nil {
		return nil
	}

	switch expr.Operator {
	case "!":
		c.emit(OP_BANG)
	case "-":
		c.emit(OP_MINUS)
	default:
		c.fail("unknown operator %s", expr.Operator)
	}
	return nil
}

func (c *Compiler) VisitInfixExpression(expr ast.InfixExpression) any {
	if expr.Operator == "<" {
		// No dedicated OP_LESS_THAN: reverse operand evaluation order
		// and reuse OP_GREATER_THAN, keeping the opcode set (and the
		// VM's binary-op dispatch) smaller.
		expr.Right.Accept(c)
		if c.err != nil {
			return nil
		}
		expr.Left.Accept(c)
		if c.err != nil {
			return nil
		}
		c.emit(OP_GREATER_THAN)
		return nil
	}

	expr.Left.Accept(c)
	if c.err != nil {
		return nil
	}
	expr.Right.Accept(c)
	if c.err != nil {
		return nil
	}

	switch expr.Operator {
	case "+":
		c.emit(OP_ADD)
	case "-":
		c.emit(OP_SUB)
	case "*":
		c.emit(OP_MUL)
	case "/":
		c.emit(OP_DIV)
	case ">":
		c.emit(OP_GREATER_THAN)
	case "==":
		c.emit(OP_EQUAL)
	case "!=":
		c.emit(OP_NOT_EQUAL)
	default:
		c.fail("unknown operator %s", expr.Operator)
	}
	return nil
}

func (c *Compiler) VisitIfExpression(expr ast.IfExpression) any {
	expr.Condition.Accept(c)
	if c.err != nil {
		return nil
	}

	// Backpatched once the consequence (and, if present, the
	// alternative) has been compiled and its length is known.
	jumpNotTruthyPos := c.emit(OP_JUMP_NOT_TRUTHY, 9999)

	expr.Consequence.Accept(c)
	if c.err != nil {
		return nil
	}
	if c.lastInstructionIs(OP_POP) {
		c.removeLastPop()
	}

	jumpPos := c.emit(OP_JUMP, 9999)

	afterConsequencePos := len(c.currentInstructions())
	c.changeOperand(jumpNotTruthyPos, afterConsequencePos)

	if expr.Alternative == nil {
		c.emit(OP_NULL)
	} else {
		expr.Alternative.Accept(c)
		if c.err != nil {
			return nil
		}
		if c.lastInstructionIs(OP_POP) {
			c.removeLastPop()
		}
	}

	afterAlternativePos := len(c.currentInstructions())
	c.changeOperand(jumpPos, afterAlternativePos)

	return nil
}

func (c *Compiler) VisitFunctionLiteral(expr ast.FunctionLiteral) any {
	c.enterScope()

	if expr.Name != "" {
		c.symbolTable.DefineFunctionName(expr.Name)
	}

	for _, p := range expr.Parameters {
		c.symbolTable.Define(p.Value)
	}

	expr.Body.Accept(c)
	if c.err != nil {
		return nil
	}

	if c.lastInstructionIs(OP_POP) {
		c.replaceLastPopWithReturn()
	}
	if !c.lastInstructionIs(OP_RETURN_VALUE) {
		c.emit(OP_RETURN)
	}

	freeSymbols := c.symbolTable.FreeSymbols
	numLocals := c.symbolTable.numDefinitions
	instructions := c.leaveScope()

	for _, s := range freeSymbols {
		c.loadSymbol(s)
	}

	compiledFn := &object.CompiledFunction{
		Instructions:  []byte(instructions),
		NumLocals:     numLocals,
		NumParameters: len(expr.Parameters),
	}

	fnIndex := c.addConstant(compiledFn)
	c.emit(OP_CLOSURE, fnIndex, len(freeSymbols))
	return nil
}

func (c *Compiler) VisitCallExpression(expr ast.CallExpression) any {
	expr.Function.Accept(c)
	if c.err != nil {
		return nil
	}

	for _, arg := range expr.Arguments {
		arg.Accept(c)
		if c.err != nil {
			return nil
		}
	}

	c.emit(OP_CALL, len(expr.Arguments))
	return nil
}

func (c *Compiler) VisitIndexExpression(expr ast.IndexExpression) any {
	expr.Left.Accept(c)
	if c.err != nil {
		return nil
	}
	expr.Index.Accept(c)
	if c.err != nil {
		return nil
	}
	c.emit(OP_INDEX)
	return nil
}
