// Package host is a small embedding environment for native modules: values,
// a collected heap of foreign references, and a line-oriented control script
// interpreter.
package host

import (
	"errors"
	"fmt"

	"jsyn/foreign"
)

var (
	ErrUnbound       = errors.New("unbound variable")
	ErrUnknownFunc   = errors.New("unknown function")
	ErrUnknownMethod = errors.New("unknown method")
	ErrArity         = errors.New("wrong number of arguments")
	ErrArgument      = errors.New("bad argument")
	ErrSyntax        = errors.New("syntax error")
)

// Value is a host value: nil, float64, string, bool or a foreign.Ref.
type Value = any

// Func is a native function callable from scripts. Methods receive their
// receiver as args[0].
type Func func(args []Value) (Value, error)

// Module is a named set of functions and per-type methods.
type Module struct {
	Name    string
	Funcs   map[string]Func
	Methods map[string]map[string]Func
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:    name,
		Funcs:   make(map[string]Func),
		Methods: make(map[string]map[string]Func),
	}
}

// Func registers fn under name and returns m for chaining.
func (m *Module) Func(name string, fn Func) *Module {
	m.Funcs[name] = fn
	return m
}

// Method registers fn as method name of the foreign type d. d must be the
// descriptor registered under its name; anything else is a programming error
// and panics.
func (m *Module) Method(d foreign.Descriptor, name string, fn Func) *Module {
	if registered, ok := foreign.Lookup(d.TypeName()); !ok || registered != d {
		panic(fmt.Sprintf("host: method %s on unregistered type %q", name, d.TypeName()))
	}
	methods, ok := m.Methods[d.TypeName()]
	if !ok {
		methods = make(map[string]Func)
		m.Methods[d.TypeName()] = methods
	}
	methods[name] = fn
	return m
}

// Arity checks that exactly n arguments were passed.
func Arity(args []Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d, got %d", ErrArity, n, len(args))
	}
	return nil
}

// Number returns args[i] as a number.
func Number(args []Value, i int) (float64, error) {
	v, ok := args[i].(float64)
	if !ok {
		return 0, fmt.Errorf("%w %d: expected number, got %s", ErrArgument, i, TypeOf(args[i]))
	}
	return v, nil
}

// String returns args[i] as a string.
func String(args []Value, i int) (string, error) {
	v, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w %d: expected string, got %s", ErrArgument, i, TypeOf(args[i]))
	}
	return v, nil
}

// Object returns args[i] as a foreign object described by t.
func Object[T any](args []Value, i int, t *foreign.Type[T]) (*foreign.Object[T], error) {
	obj, ok := args[i].(*foreign.Object[T])
	if !ok || obj.Type() != t {
		return nil, fmt.Errorf("%w %d: expected %s, got %s", ErrArgument, i, t.Name, TypeOf(args[i]))
	}
	return obj, nil
}

// TypeOf names the type of v the way scripts see it.
func TypeOf(v Value) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case foreign.Ref:
		return v.TypeName()
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Format renders v for print.
func Format(v Value) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case float64:
		return fmt.Sprintf("%g", v)
	case string:
		return fmt.Sprintf("%q", v)
	case foreign.Ref:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
