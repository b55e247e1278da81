package opencl

import (
	"fmt"
	"unsafe"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
	"github.com/achilleasa/gopencl/v1.2/cl"
)

// An opencl buffer with a host staging area used to emulate mapping.
type buffer struct {
	// Handle to opencl buffer.
	bufHandle cl.Mem

	// Associated Device.
	device *Device

	// A name for identifying the buffer.
	name string

	// Allocated size.
	size int

	// Host copy of the buffer contents while mapped. Allocated as 64-bit
	// words so typed views are aligned.
	staging  []uint64
	mapped   bool
	mapFlags device.MapFlags
}

func (b *buffer) Name() string {
	return b.name
}

// Get buffer size.
func (b *buffer) Size() int {
	return b.size
}

// Release buffer.
func (b *buffer) Release() {
	if b.bufHandle != nil {
		cl.ReleaseMemObject(b.bufHandle)
		b.bufHandle = nil
	}
	b.staging = nil
}

// Get opencl buffer handle.
func (b *buffer) Handle() cl.Mem {
	return b.bufHandle
}

func (b *buffer) stagingBytes() []byte {
	if b.staging == nil {
		b.staging = make([]uint64, (b.size+7)/8)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.staging[0])), b.size)
}

// Allocate a buffer with the given size and flags. Implements device.Context.
func (d *Device) CreateBuffer(name string, size int, flags device.MemFlags) (device.Buffer, error) {
	var errCode cl.ErrorCode

	if d.ctx == nil {
		return nil, fmt.Errorf("opencl device (%s): device not initialized", d.Name)
	}
	if size <= 0 {
		return nil, fmt.Errorf("opencl device (%s): invalid size %d for buffer %s", d.Name, size, name)
	}

	handle := cl.CreateBuffer(
		*d.ctx,
		memFlags(flags),
		cl.MemFlags(size),
		nil,
		(*int32)(&errCode),
	)
	if errCode != cl.SUCCESS {
		return nil, fmt.Errorf("opencl device (%s): could not allocate buffer %s of size %d (error: %s; code %d)", d.Name, name, size, ErrorName(errCode), errCode)
	}

	return &buffer{
		bufHandle: handle,
		device:    d,
		name:      name,
		size:      size,
	}, nil
}

// Map buffer into host memory. Read mappings copy the device contents into
// the staging area; the copy is blocking so the returned event has already
// completed.
func (d *Device) MapBuffer(_ int, buf device.Buffer, flags device.MapFlags) ([]byte, device.Event, error) {
	b, err := d.ownBuffer(buf)
	if err != nil {
		return nil, nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if b.mapped {
		return nil, nil, device.ErrAlreadyMapped
	}

	data := b.stagingBytes()
	if flags&device.MapRead != 0 {
		errCode := cl.EnqueueReadBuffer(
			d.cmdQueue,
			b.bufHandle,
			cl.TRUE,
			0,
			uint64(b.size),
			unsafe.Pointer(&data[0]),
			0,
			nil,
			nil,
		)
		if errCode != cl.SUCCESS {
			return nil, nil, fmt.Errorf("opencl device (%s): error copying device data from %s to host buffer (error: %s; code %d)", d.Name, b.name, ErrorName(errCode), errCode)
		}
	}

	b.mapped = true
	b.mapFlags = flags
	return data, device.CompletedEvent{}, nil
}

// Unmap buffer. Write mappings upload the staging area to the device.
func (d *Device) UnmapBuffer(_ int, buf device.Buffer, _ []byte) (device.Event, error) {
	b, err := d.ownBuffer(buf)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !b.mapped {
		return nil, device.ErrNotMapped
	}
	b.mapped = false

	if b.mapFlags&device.MapWrite == 0 {
		return device.CompletedEvent{}, nil
	}

	data := b.stagingBytes()
	errCode := cl.EnqueueWriteBuffer(
		d.cmdQueue,
		b.bufHandle,
		cl.TRUE,
		0,
		uint64(b.size),
		unsafe.Pointer(&data[0]),
		0,
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		return nil, fmt.Errorf("opencl device (%s): error copying host data to device buffer %s (error: %s; code %d)", d.Name, b.name, ErrorName(errCode), errCode)
	}
	return device.CompletedEvent{}, nil
}

func (d *Device) ownBuffer(buf device.Buffer) (*buffer, error) {
	b, ok := buf.(*buffer)
	if !ok || b.device != d {
		return nil, fmt.Errorf("opencl device (%s): buffer %s does not belong to this device", d.Name, buf.Name())
	}
	if b.bufHandle == nil {
		return nil, device.ErrReleased
	}
	return b, nil
}

func memFlags(flags device.MemFlags) cl.MemFlags {
	switch {
	case flags&device.MemReadWrite != 0:
		return cl.MEM_READ_WRITE
	case flags&device.MemWriteOnly != 0:
		return cl.MEM_WRITE_ONLY
	default:
		return cl.MEM_READ_ONLY
	}
}
