package vm

import (
	"monkey/compiler"
	"monkey/object"
)

// Frame is one call frame on the VM's frame stack: a closure, its own
// instruction pointer, and the stack index its locals/arguments begin
// at. basePointer lets OP_GET_LOCAL/OP_SET_LOCAL address slots
// relative to this call regardless of how deep the value stack is
// from outer, still-suspended calls.
type Frame struct {
	cl          *object.Closure
	ip          int
	basePointer int
}

// NewFrame creates a frame for invoking cl, with its locals/arguments
// starting at basePointer on the value stack.
func NewFrame(cl *object.Closure, basePointer int) *Frame {
	return &Frame{cl: cl, ip: -1, basePointer: basePointer}
}

// Instructions returns the bytecode this frame is executing.
func (f *Frame) Instructions() compiler.Instructions {
	return compiler.Instructions(f.cl.Fn.Instructions)
}
