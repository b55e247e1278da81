// Package device defines the buffer service that the scene compiler uses to
// allocate and fill device memory, together with typed helpers built on top
// of it.
package device

import (
	"errors"
)

type MemFlags uint32

// Buffer access flags from the point of view of device kernels.
const (
	MemReadOnly MemFlags = 1 << iota
	MemWriteOnly
	MemReadWrite
)

type MapFlags uint32

// Host access flags used when mapping a buffer.
const (
	MapRead MapFlags = 1 << iota
	MapWrite
)

var (
	ErrAlreadyMapped     = errors.New("device: buffer is already mapped")
	ErrNotMapped         = errors.New("device: buffer is not mapped")
	ErrInsufficientSpace = errors.New("device: insufficient buffer space")
	ErrReleased          = errors.New("device: buffer has been released")
)

// A device memory allocation.
type Buffer interface {
	// A name for identifying the buffer in logs and stats.
	Name() string

	// Allocated size in bytes.
	Size() int

	// Release device memory.
	Release()
}

// An asynchronous device operation.
type Event interface {
	Wait() error
}

// Context is implemented by device backends.
//
// MapBuffer returns a host view over the buffer contents. The view must not be
// accessed before the returned event completes and must not be retained after
// the matching UnmapBuffer call.
type Context interface {
	CreateBuffer(name string, size int, flags MemFlags) (Buffer, error)
	MapBuffer(queue int, buf Buffer, flags MapFlags) ([]byte, Event, error)
	UnmapBuffer(queue int, buf Buffer, data []byte) (Event, error)
}

// An event for an operation that has already completed.
type CompletedEvent struct {
	Err error
}

func (e CompletedEvent) Wait() error {
	return e.Err
}
