package object

import "fmt"

// Builtins is the stable, order-significant registry of built-in
// functions. Index within this slice is the operand the compiler emits
// for GetBuiltin and the VM uses to dispatch — reordering entries would
// break already-compiled bytecode, so new builtins are always appended.
var Builtins = []struct {
	Name    string
	Builtin *Builtin
}{
	{"len", &Builtin{Fn: builtinLen}},
	{"puts", &Builtin{Fn: builtinPuts}},
	{"first", &Builtin{Fn: builtinFirst}},
	{"last", &Builtin{Fn: builtinLast}},
	{"rest", &Builtin{Fn: builtinRest}},
	{"push", &Builtin{Fn: builtinPush}},
}

// GetBuiltinByName returns the registered builtin for name, or nil if
// there isn't one. Used by the evaluator's identifier resolution; the
// compiler walks Builtins directly to keep the registry indices.
func GetBuiltinByName(name string) *Builtin {
	for _, def := range Builtins {
		if def.Name == name {
			return def.Builtin
		}
	}
	return nil
}

func newError(format string, a ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func builtinLen(args ...Object) Object {
	if len(args) != 1 {
		return newError("wrong number of arguments. got=%d, want=1", len(args))
	}
	switch arg := args[0].(type) {
	case *String:
		return &Integer{Value: int64(len(arg.Value))}
	case *Array:
		return &Integer{Value: int64(len(arg.Elements))}
	default:
		return newError("argument to `len` not supported, got %s", args[0].Type())
	}
}

func builtinPuts(args ...Object) Object {
	for _, arg := range args {
		fmt.Println(arg.Inspect())
	}
	return nil
}

func builtinFirst(args ...Object) Object {
	if len(args) != 1 {
		return newError("wrong number of arguments. got=%d, want=1", len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return newError("argument to `first` must be ARRAY, got %s", args[0].Type())
	}
	if len(arr.Elements) > 0 {
		return arr.Elements[0]
	}
	return nil
}

func builtinLast(args ...Object) Object {
	if len(args) != 1 {
		return newError("wrong number of arguments. got=%d, want=1", len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return newError("argument to `last` must be ARRAY, got %s", args[0].Type())
	}
	length := len(arr.Elements)
	if length > 0 {
		return arr.Elements[length-1]
	}
	return nil
}

func builtinRest(args ...Object) Object {
	if len(args) != 1 {
		return newError("wrong number of arguments. got=%d, want=1", len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return newError("argument to `rest` must be ARRAY, got %s", args[0].Type())
	}
	length := len(arr.Elements)
	if length > 0 {
		newElements := make([]Object, length-1)
		copy(newElements, arr.Elements[1:length])
		return &Array{Elements: newElements}
	}
	return nil
}

func builtinPush(args ...Object) Object {
	if len(args) != 2 {
		return newError("wrong number of arguments. got=%d, want=2", len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return newError("argument to `push` must be ARRAY, got %s", args[0].Type())
	}
	length := len(arr.Elements)
	newElements := make([]Object, length+1)
	copy(newElements, arr.Elements)
	newElements[length] = args[1]
	return &Array{Elements: newElements}
}
