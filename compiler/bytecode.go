// Package compiler lowers a parsed Monkey program to the bytecode
// executed by the VM package, using a symbol-table stack to resolve
// identifiers to global/local/builtin/free slots at compile time.
package compiler

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
)

// Opcode identifies a single bytecode instruction.
type Opcode byte

// Instructions is a flat, densely packed instruction stream: one byte
// of opcode followed by zero or more big-endian operand bytes, with no
// padding between instructions.
type Instructions []byte

// Bytecode is what the compiler hands to the VM: the instruction
// stream plus the constant pool it indexes into.
type Bytecode struct {
	Instructions Instructions
	Constants    []any
}

const (
	OP_CONSTANT Opcode = iota
	OP_POP
	OP_NULL
	OP_TRUE
	OP_FALSE
	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_EQUAL
	OP_NOT_EQUAL
	OP_GREATER_THAN
	OP_MINUS
	OP_BANG
	OP_JUMP
	OP_JUMP_NOT_TRUTHY
	OP_SET_GLOBAL
	OP_GET_GLOBAL
	OP_ARRAY
	OP_HASH
	OP_INDEX
	OP_CALL
	OP_RETURN_VALUE
	OP_RETURN
	OP_SET_LOCAL
	OP_GET_LOCAL
	OP_GET_BUILTIN
	OP_CLOSURE
	OP_GET_FREE
	OP_CURRENT_CLOSURE
)

// OpCodeDefinition names an opcode and the byte width of each of its
// operands, in order. A definition with an empty OperandWidths takes
// no operands at all.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_CONSTANT:        {"OP_CONSTANT", []int{2}},
	OP_POP:             {"OP_POP", []int{}},
	OP_NULL:            {"OP_NULL", []int{}},
	OP_TRUE:            {"OP_TRUE", []int{}},
	OP_FALSE:           {"OP_FALSE", []int{}},
	OP_ADD:             {"OP_ADD", []int{}},
	OP_SUB:             {"OP_SUB", []int{}},
	OP_MUL:             {"OP_MUL", []int{}},
	OP_DIV:             {"OP_DIV", []int{}},
	OP_EQUAL:           {"OP_EQUAL", []int{}},
	OP_NOT_EQUAL:       {"OP_NOT_EQUAL", []int{}},
	OP_GREATER_THAN:    {"OP_GREATER_THAN", []int{}},
	OP_MINUS:           {"OP_MINUS", []int{}},
	OP_BANG:            {"OP_BANG", []int{}},
	OP_JUMP:            {"OP_JUMP", []int{2}},
	OP_JUMP_NOT_TRUTHY: {"OP_JUMP_NOT_TRUTHY", []int{2}},
	OP_SET_GLOBAL:      {"OP_SET_GLOBAL", []int{2}},
	OP_GET_GLOBAL:      {"OP_GET_GLOBAL", []int{2}},
	OP_ARRAY:           {"OP_ARRAY", []int{2}},
	OP_HASH:            {"OP_HASH", []int{2}},
	OP_INDEX:           {"OP_INDEX", []int{}},
	OP_CALL:            {"OP_CALL", []int{1}},
	OP_RETURN_VALUE:    {"OP_RETURN_VALUE", []int{}},
	OP_RETURN:          {"OP_RETURN", []int{}},
	OP_SET_LOCAL:       {"OP_SET_LOCAL", []int{1}},
	OP_GET_LOCAL:       {"OP_GET_LOCAL", []int{1}},
	OP_GET_BUILTIN:     {"OP_GET_BUILTIN", []int{1}},
	OP_CLOSURE:         {"OP_CLOSURE", []int{2, 1}},
	OP_GET_FREE:        {"OP_GET_FREE", []int{1}},
	OP_CURRENT_CLOSURE: {"OP_CURRENT_CLOSURE", []int{}},
}

// Get returns the definition for op, or an error if op is unknown.
func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// Make encodes a single instruction: the opcode byte followed by its
// operands packed big-endian at the widths its definition declares.
// Unknown opcodes encode to an empty slice.
func Make(op Opcode, operands ...int) []byte {
	def, ok := definitions[op]
	if !ok {
		return []byte{}
	}

	instructionLen := 1
	for _, w := range def.OperandWidths {
		instructionLen += w
	}

	instruction := make([]byte, instructionLen)
	instruction[0] = byte(op)

	offset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(operand))
		case 1:
			instruction[offset] = byte(operand)
		}
		offset += width
	}
	return instruction
}

// ReadOperands decodes the operands of a single instruction starting
// at ins[0] (the byte right after the opcode) according to def. It
// returns the decoded operands and how many bytes they occupied —
// the inverse of Make, so a round trip through Make/ReadOperands
// reproduces the original operand values.
func ReadOperands(def *OpCodeDefinition, ins Instructions) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0

	for i, width := range def.OperandWidths {
		switch width {
		case 2:
			operands[i] = int(ReadUint16(ins[offset:]))
		case 1:
			operands[i] = int(ReadUint8(ins[offset:]))
		}
		offset += width
	}
	return operands, offset
}

func ReadUint16(ins Instructions) uint16 { return binary.BigEndian.Uint16(ins) }
func ReadUint8(ins Instructions) uint8   { return uint8(ins[0]) }

// Disassemble renders an instruction stream as human-readable text,
// one instruction per line prefixed with its byte offset — e.g.
// "0000 OP_CONSTANT 1". It is the textual counterpart to Make, used
// by the `emit` subcommand and the compiled REPL's introspection
// flags, never by the VM's own dispatch loop.
func (ins Instructions) Disassemble() string {
	var out strings.Builder
	i := 0
	for i < len(ins) {
		def, err := Get(Opcode(ins[i]))
		if err != nil {
			fmt.Fprintf(&out, "%04d ERROR: %s\n", i, err)
			i++
			continue
		}

		operands, read := ReadOperands(def, ins[i+1:])
		fmt.Fprintf(&out, "%04d %s\n", i, formatInstruction(def, operands))

		i += 1 + read
	}
	return out.String()
}

func formatInstruction(def *OpCodeDefinition, operands []int) string {
	switch len(operands) {
	case 0:
		return def.Name
	case 1:
		return fmt.Sprintf("%s %d", def.Name, operands[0])
	case 2:
		return fmt.Sprintf("%s %d %d", def.Name, operands[0], operands[1])
	default:
		return fmt.Sprintf("ERROR: unhandled operand count for %s", def.Name)
	}
}

// DumpBytecode writes the raw instruction stream to filePath (defaulting
// to "bytecode.monkeyc") encoded as hex, so it can be inspected outside
// a debugger.
func (b Bytecode) DumpBytecode(filePath string) error {
	if filePath == "" {
		filePath = "bytecode.monkeyc"
	}
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("error creating bytecode file: %s", err.Error())
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%x", []byte(b.Instructions))
	return err
}
