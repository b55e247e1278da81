package device

import (
	"fmt"
	"unsafe"
)

// TypedBuffer wraps a device buffer holding a fixed number of T elements.
// T must be a fixed-size type without pointers.
type TypedBuffer[T any] struct {
	Buffer

	count int
	flags MemFlags
}

// Get the size in bytes of a single element.
func ElemSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Allocate a buffer for count elements of type T. Zero length buffers are
// rounded up to a single element since device APIs reject empty allocations.
func CreateBuffer[T any](ctx Context, name string, count int, flags MemFlags) (*TypedBuffer[T], error) {
	if count < 1 {
		count = 1
	}
	buf, err := ctx.CreateBuffer(name, count*ElemSize[T](), flags)
	if err != nil {
		return nil, fmt.Errorf("device: could not allocate %d elements for buffer %s: %w", count, name, err)
	}
	return &TypedBuffer[T]{Buffer: buf, count: count, flags: flags}, nil
}

// Get the element capacity. A nil buffer has zero capacity.
func (b *TypedBuffer[T]) Len() int {
	if b == nil {
		return 0
	}
	return b.count
}

// Get the allocated size in bytes.
func (b *TypedBuffer[T]) Size() int {
	if b == nil || b.Buffer == nil {
		return 0
	}
	return b.Buffer.Size()
}

// Release the underlying buffer. Calling Release on a nil buffer is a no-op.
func (b *TypedBuffer[T]) Release() {
	if b == nil || b.Buffer == nil {
		return
	}
	b.Buffer.Release()
	b.Buffer = nil
	b.count = 0
}

// Make sure that *buf can hold at least count elements. A new buffer is only
// allocated when the required count exceeds the current capacity; shrinking
// never reallocates. Returns true if a new buffer was allocated.
func EnsureCapacity[T any](ctx Context, buf **TypedBuffer[T], name string, count int, flags MemFlags) (bool, error) {
	if *buf != nil && (*buf).Buffer != nil && count <= (*buf).count {
		return false, nil
	}

	newBuf, err := CreateBuffer[T](ctx, name, count, flags)
	if err != nil {
		return false, err
	}
	(*buf).Release()
	*buf = newBuf
	return true, nil
}

// Reinterpret a mapped byte slice as a slice of T. Trailing bytes that do not
// fill a whole element are dropped.
func View[T any](data []byte) []T {
	size := ElemSize[T]()
	if len(data) < size || size == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), len(data)/size)
}

// Map buffer, wait for the mapping to complete, invoke fn with a typed view of
// the buffer contents and unmap. The unmap is issued even if fn fails and is
// always waited on before returning.
func WithMapped[T any](ctx Context, queue int, buf *TypedBuffer[T], flags MapFlags, fn func([]T) error) error {
	if buf == nil || buf.Buffer == nil {
		return ErrReleased
	}

	data, mapEvt, err := ctx.MapBuffer(queue, buf.Buffer, flags)
	if err != nil {
		return fmt.Errorf("device: could not map buffer %s: %w", buf.Name(), err)
	}

	fnErr := mapEvt.Wait()
	if fnErr == nil {
		view := View[T](data)
		if len(view) > buf.count {
			view = view[:buf.count]
		}
		fnErr = fn(view)
	}

	unmapEvt, err := ctx.UnmapBuffer(queue, buf.Buffer, data)
	if err == nil {
		err = unmapEvt.Wait()
	}

	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("device: could not unmap buffer %s: %w", buf.Name(), err)
	}
	return nil
}
