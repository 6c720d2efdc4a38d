package command

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// ErrQueueFull is returned by Producer.TryPush when the ring is at capacity.
var ErrQueueFull = errors.New("command queue full")

// ring is a fixed-capacity SPSC queue. head is only advanced by the consumer,
// tail only by the producer; both are monotonically increasing counters.
type ring struct {
	buf []Command

	head atomic.Uint64
	_    cpu.CacheLinePad
	tail atomic.Uint64
	_    cpu.CacheLinePad
}

// noCopy makes `go vet` flag copies of the halves.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Producer is the push-only half of a channel. It must be used from one goroutine at a time.
type Producer struct {
	_ noCopy
	r *ring
}

// Consumer is the pop-only half of a channel. It must be used from one goroutine at a time.
type Consumer struct {
	_ noCopy
	r *ring
}

// New allocates a channel of the given capacity and splits it into its two halves.
// A non-positive capacity selects DefaultCapacity.
func New(capacity int) (*Producer, *Consumer) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &ring{buf: make([]Command, capacity)}
	return &Producer{r: r}, &Consumer{r: r}
}

// TryPush enqueues c without blocking or allocating.
func (p *Producer) TryPush(c Command) error {
	r := p.r
	tail := r.tail.Load()
	if tail-r.head.Load() == uint64(len(r.buf)) {
		return ErrQueueFull
	}
	r.buf[tail%uint64(len(r.buf))] = c
	r.tail.Store(tail + 1)
	return nil
}

// Cap returns the fixed capacity of the channel.
func (p *Producer) Cap() int {
	return len(p.r.buf)
}

// TryPop dequeues the oldest command, if any, without blocking.
func (c *Consumer) TryPop() (Command, bool) {
	r := c.r
	head := r.head.Load()
	if head == r.tail.Load() {
		return 0, false
	}
	cmd := r.buf[head%uint64(len(r.buf))]
	r.head.Store(head + 1)
	return cmd, true
}

// Len returns the number of commands waiting to be popped.
func (c *Consumer) Len() int {
	r := c.r
	return int(r.tail.Load() - r.head.Load())
}
