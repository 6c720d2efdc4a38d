package host

import (
	"log/slog"

	"jsyn/foreign"
	"jsyn/logger"
)

// Heap tracks every foreign reference handed to scripts and finalizes the
// ones that are no longer reachable.
type Heap struct {
	refs   map[foreign.Ref]struct{}
	logger *slog.Logger
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{
		refs:   make(map[foreign.Ref]struct{}),
		logger: logger.WithComponent("heap"),
	}
}

// Track puts r under the heap's management.
func (h *Heap) Track(r foreign.Ref) {
	h.refs[r] = struct{}{}
}

// Len returns the number of tracked references.
func (h *Heap) Len() int {
	return len(h.refs)
}

// Collect finalizes every tracked reference not reachable from roots, following
// the references each value marks, and returns how many were dropped.
func (h *Heap) Collect(roots []Value) int {
	reachable := make(map[foreign.Ref]struct{})
	var stack []foreign.Ref
	for _, v := range roots {
		if r, ok := v.(foreign.Ref); ok {
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := reachable[r]; seen {
			continue
		}
		reachable[r] = struct{}{}
		r.Mark(func(child foreign.Ref) {
			stack = append(stack, child)
		})
	}

	dropped := 0
	for r := range h.refs {
		if _, ok := reachable[r]; ok {
			continue
		}
		r.Finalize()
		delete(h.refs, r)
		dropped++
	}

	if dropped > 0 {
		h.logger.Debug("Collected references", slog.Int("dropped", dropped), slog.Int("live", len(h.refs)))
	}
	return dropped
}

// Close finalizes every tracked reference.
func (h *Heap) Close() int {
	return h.Collect(nil)
}
