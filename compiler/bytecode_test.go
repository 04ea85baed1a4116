package compiler

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OP_CONSTANT, []int{65534}, []byte{byte(OP_CONSTANT), 255, 254}},
		{OP_ADD, []int{}, []byte{byte(OP_ADD)}},
		{OP_GET_LOCAL, []int{255}, []byte{byte(OP_GET_LOCAL), 255}},
		{OP_CLOSURE, []int{65534, 255}, []byte{byte(OP_CLOSURE), 255, 254, 255}},
	}

	for _, tt := range tests {
		instruction := Make(tt.op, tt.operands...)
		if len(instruction) != len(tt.expected) {
			t.Fatalf("instruction has wrong length. got=%d, want=%d", len(instruction), len(tt.expected))
		}
		for i, b := range tt.expected {
			if instruction[i] != b {
				t.Errorf("wrong byte at pos %d. got=%d, want=%d", i, instruction[i], b)
			}
		}
	}
}

func TestReadOperands(t *testing.T) {
	tests := []struct {
		op        Opcode
		operands  []int
		bytesRead int
	}{
		{OP_CONSTANT, []int{65535}, 2},
		{OP_GET_LOCAL, []int{255}, 1},
		{OP_CLOSURE, []int{65535, 255}, 3},
	}

	for _, tt := range tests {
		instruction := Make(tt.op, tt.operands...)

		def, err := Get(tt.op)
		if err != nil {
			t.Fatalf("definition not found: %s", err)
		}

		operandsRead, n := ReadOperands(def, instruction[1:])
		if n != tt.bytesRead {
			t.Fatalf("n wrong. got=%d, want=%d", n, tt.bytesRead)
		}
		for i, want := range tt.operands {
			if operandsRead[i] != want {
				t.Errorf("operand wrong. got=%d, want=%d", operandsRead[i], want)
			}
		}
	}
}

func TestInstructionsDisassemble(t *testing.T) {
	instructions := []Instructions{
		Make(OP_ADD),
		Make(OP_GET_LOCAL, 1),
		Make(OP_CONSTANT, 2),
		Make(OP_CONSTANT, 65535),
		Make(OP_CLOSURE, 65535, 255),
	}

	expected := `0000 OP_ADD
0001 OP_GET_LOCAL 1
0003 OP_CONSTANT 2
0006 OP_CONSTANT 65535
0009 OP_CLOSURE 65535 255
`

	concatted := Instructions{}
	for _, ins := range instructions {
		concatted = append(concatted, ins...)
	}

	if concatted.Disassemble() != expected {
		t.Errorf("disassembly wrong.\ngot=%q\nwant=%q", concatted.Disassemble(), expected)
	}
}
