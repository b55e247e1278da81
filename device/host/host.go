// Package host implements the device buffer service on top of host memory.
// It is used for CPU-only runs and as a test double for device backends.
package host

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
)

type buffer struct {
	ctx   *Context
	name  string
	flags device.MemFlags

	// Backing storage is allocated as 64-bit words so typed views are aligned.
	words  []uint64
	size   int
	mapped bool
}

func (b *buffer) Name() string {
	return b.name
}

func (b *buffer) Size() int {
	return b.size
}

func (b *buffer) Release() {
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()

	if b.words == nil {
		return
	}
	b.words = nil
	b.ctx.live--
	b.ctx.liveBytes -= b.size
}

func (b *buffer) bytes() []byte {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.words[0])), b.size)
}

// Context is a device.Context backed by host memory. It records allocation
// statistics that tests use to verify buffer reuse.
type Context struct {
	mu sync.Mutex

	allocations map[string]int
	total       int
	live        int
	liveBytes   int
	maps        int
}

// Create a new host context.
func NewContext() *Context {
	return &Context{
		allocations: make(map[string]int),
	}
}

func (c *Context) CreateBuffer(name string, size int, flags device.MemFlags) (device.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("host device: invalid size %d for buffer %s", size, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.allocations[name]++
	c.total++
	c.live++
	c.liveBytes += size

	return &buffer{
		ctx:   c,
		name:  name,
		flags: flags,
		words: make([]uint64, (size+7)/8),
		size:  size,
	}, nil
}

func (c *Context) MapBuffer(_ int, buf device.Buffer, _ device.MapFlags) ([]byte, device.Event, error) {
	b, ok := buf.(*buffer)
	if !ok || b.ctx != c {
		return nil, nil, fmt.Errorf("host device: buffer %s does not belong to this context", buf.Name())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if b.words == nil {
		return nil, nil, device.ErrReleased
	}
	if b.mapped {
		return nil, nil, device.ErrAlreadyMapped
	}
	b.mapped = true
	c.maps++
	return b.bytes(), device.CompletedEvent{}, nil
}

func (c *Context) UnmapBuffer(_ int, buf device.Buffer, _ []byte) (device.Event, error) {
	b, ok := buf.(*buffer)
	if !ok || b.ctx != c {
		return nil, fmt.Errorf("host device: buffer %s does not belong to this context", buf.Name())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !b.mapped {
		return nil, device.ErrNotMapped
	}
	b.mapped = false
	return device.CompletedEvent{}, nil
}

// Get the number of allocations performed for buffers with the given name.
func (c *Context) Allocations(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocations[name]
}

// Get the total number of allocations.
func (c *Context) TotalAllocations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Get the number of buffers that have not been released and their size.
func (c *Context) Live() (count, bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live, c.liveBytes
}

// Get the number of map operations.
func (c *Context) Maps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maps
}

// Get a copy of the buffer contents as a slice of T.
func Contents[T any](buf *device.TypedBuffer[T]) []T {
	b, ok := buf.Buffer.(*buffer)
	if !ok {
		return nil
	}
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()

	view := device.View[T](b.bytes())
	out := make([]T, len(view))
	copy(out, view)
	return out
}
