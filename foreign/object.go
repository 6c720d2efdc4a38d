package foreign

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrFinalized is returned by hosts that look into an object after its finalizer ran.
	ErrFinalized = errors.New("object finalized")
	// ErrReleased is returned by hosts that look into an object whose value was taken.
	ErrReleased = errors.New("object value released")
)

// Ref is the type-erased view of an Object the host works with.
type Ref interface {
	Descriptor
	TypeDescriptor() Descriptor
	Live() bool
	Finalized() bool
	Finalize() bool
	Mark(visit func(Ref))
	Compare(other Ref) (int, bool)
	Hash() (uint64, bool)
	String() string
	Next(key any) (any, bool)
}

type slot uint8

const (
	live slot = iota
	released
	finalized
)

// Object owns one value of type T on behalf of a host.
type Object[T any] struct {
	typ *Type[T]

	mu    sync.Mutex
	value T
	slot  slot
}

var _ Ref = (*Object[int])(nil)

// New wraps v. The object owns v until it is taken or finalized.
func New[T any](t *Type[T], v T) *Object[T] {
	return &Object[T]{typ: t, value: v}
}

// Type returns the shared descriptor of the object.
func (o *Object[T]) Type() *Type[T] {
	return o.typ
}

func (o *Object[T]) TypeName() string {
	return o.typ.Name
}

// TypeDescriptor returns the descriptor as the registry stores it.
func (o *Object[T]) TypeDescriptor() Descriptor {
	return o.typ
}

// Live reports whether the object currently owns its value.
func (o *Object[T]) Live() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.slot == live
}

// Finalized reports whether the finalizer already ran.
func (o *Object[T]) Finalized() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.slot == finalized
}

// Borrow calls fn with the owned value and reports whether it did. fn is not
// called once the value was taken or finalized. fn must not call back into o.
func (o *Object[T]) Borrow(fn func(v *T)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.slot != live {
		return false
	}
	fn(&o.value)
	return true
}

// Take moves the value out of the object. The finalizer will not see it.
func (o *Object[T]) Take() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var zero T
	if o.slot != live {
		return zero, false
	}
	v := o.value
	o.value = zero
	o.slot = released
	return v, true
}

// Restore hands a taken value back to the object. It fails if the object
// still owns a value or was finalized in the meantime.
func (o *Object[T]) Restore(v T) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.slot != released {
		return false
	}
	o.value = v
	o.slot = live
	return true
}

// Finalize runs the type's teardown on the owned value and reports whether
// it did. Every call after the first is a no-op.
func (o *Object[T]) Finalize() bool {
	o.mu.Lock()
	if o.slot == finalized {
		o.mu.Unlock()
		return false
	}
	owned := o.slot == live
	v := o.value
	var zero T
	o.value = zero
	o.slot = finalized
	o.mu.Unlock()

	if owned && o.typ.Finalize != nil {
		o.typ.Finalize(v)
	}
	return owned
}

// Mark reports the references held by the value to visit.
func (o *Object[T]) Mark(visit func(Ref)) {
	if o.typ.Mark == nil {
		return
	}
	if v, ok := o.snapshot(); ok {
		o.typ.Mark(v, visit)
	}
}

// Compare orders o against other. ok is false when the type has no compare
// hook, other is of a different type, or either value is gone.
func (o *Object[T]) Compare(other Ref) (cmp int, ok bool) {
	that, same := other.(*Object[T])
	if o.typ.Compare == nil || !same || that.typ != o.typ {
		return 0, false
	}
	a, aok := o.snapshot()
	b, bok := that.snapshot()
	if !aok || !bok {
		return 0, false
	}
	return o.typ.Compare(a, b), true
}

func (o *Object[T]) Hash() (uint64, bool) {
	if o.typ.Hash == nil {
		return 0, false
	}
	v, ok := o.snapshot()
	if !ok {
		return 0, false
	}
	return o.typ.Hash(v), true
}

func (o *Object[T]) String() string {
	v, ok := o.snapshot()
	switch {
	case !ok:
		return fmt.Sprintf("<%s %p (released)>", o.typ.Name, o)
	case o.typ.String != nil:
		return fmt.Sprintf("<%s %s>", o.typ.Name, o.typ.String(v))
	default:
		return fmt.Sprintf("<%s %p>", o.typ.Name, o)
	}
}

// Next enumerates the value: it returns the key following key, starting from a nil key.
func (o *Object[T]) Next(key any) (any, bool) {
	if o.typ.Next == nil {
		return nil, false
	}
	v, ok := o.snapshot()
	if !ok {
		return nil, false
	}
	return o.typ.Next(v, key)
}

func (o *Object[T]) snapshot() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value, o.slot == live
}
