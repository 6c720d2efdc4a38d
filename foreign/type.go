// Package foreign wraps owned Go values for a host that manages their
// lifetime with its own collector and finalizes each reference exactly once.
package foreign

import (
	"fmt"
	"sync"
)

// Type is the descriptor shared by every wrapped value of type T. Hooks are
// optional except Finalize, which receives the value back by ownership and
// runs its teardown. Hooks are dispatched by the host only.
type Type[T any] struct {
	Name string

	Finalize func(v T)
	Mark     func(v T, visit func(Ref))
	Compare  func(a, b T) int
	Hash     func(v T) uint64
	String   func(v T) string
	Next     func(v T, key any) (next any, ok bool)
}

// TypeName returns the name the host knows the type by.
func (t *Type[T]) TypeName() string {
	return t.Name
}

// Descriptor is the type-erased view of a Type.
type Descriptor interface {
	TypeName() string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Descriptor{}
)

// Register adds t to the process-wide registry and returns it, so it can be
// used in a package-level var declaration. Registering two types under the
// same name is a programming error and panics.
func Register[T any](t *Type[T]) *Type[T] {
	registryMu.Lock()
	defer registryMu.Unlock()

	if t.Name == "" {
		panic("foreign: type without name")
	}
	if _, ok := registry[t.Name]; ok {
		panic(fmt.Sprintf("foreign: type %q registered twice", t.Name))
	}
	registry[t.Name] = t
	return t
}

// Lookup returns the registered descriptor called name.
func Lookup(name string) (Descriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	return d, ok
}
