package host

import (
	"errors"
	"testing"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
)

func TestMapWriteUnmap(t *testing.T) {
	ctx := NewContext()
	buf, err := device.CreateBuffer[int32](ctx, "test", 4, device.MemReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Release()

	if buf.Size() != 16 {
		t.Fatalf("expected buffer size to be 16; got %d", buf.Size())
	}

	err = device.WithMapped(ctx, 0, buf, device.MapWrite, func(data []int32) error {
		if len(data) != 4 {
			t.Fatalf("expected mapped view with 4 elements; got %d", len(data))
		}
		for i := range data {
			data[i] = int32(i * 10)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got := Contents(buf)
	for i, v := range got {
		if v != int32(i*10) {
			t.Fatalf("expected element %d to be %d; got %d", i, i*10, v)
		}
	}
}

func TestMapMisuse(t *testing.T) {
	ctx := NewContext()
	buf, err := device.CreateBuffer[float32](ctx, "test", 1, device.MemReadOnly)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = ctx.UnmapBuffer(0, buf.Buffer, nil); !errors.Is(err, device.ErrNotMapped) {
		t.Fatalf("expected ErrNotMapped; got %v", err)
	}

	if _, _, err = ctx.MapBuffer(0, buf.Buffer, device.MapRead); err != nil {
		t.Fatal(err)
	}
	if _, _, err = ctx.MapBuffer(0, buf.Buffer, device.MapRead); !errors.Is(err, device.ErrAlreadyMapped) {
		t.Fatalf("expected ErrAlreadyMapped; got %v", err)
	}
	if _, err = ctx.UnmapBuffer(0, buf.Buffer, nil); err != nil {
		t.Fatal(err)
	}

	buf.Release()
	if count, _ := ctx.Live(); count != 0 {
		t.Fatalf("expected no live buffers after release; got %d", count)
	}
}

func TestEnsureCapacityIsGrowOnly(t *testing.T) {
	ctx := NewContext()

	var buf *device.TypedBuffer[uint32]
	specs := []struct {
		count    int
		expGrow  bool
		expAlloc int
		expLen   int
	}{
		{10, true, 1, 10},
		{5, false, 1, 10},
		{10, false, 1, 10},
		{11, true, 2, 11},
		{0, false, 2, 11},
	}

	for specIndex, spec := range specs {
		grew, err := device.EnsureCapacity(ctx, &buf, "grow", spec.count, device.MemReadOnly)
		if err != nil {
			t.Fatal(err)
		}
		if grew != spec.expGrow {
			t.Fatalf("[spec %d] expected grow to be %t; got %t", specIndex, spec.expGrow, grew)
		}
		if got := ctx.Allocations("grow"); got != spec.expAlloc {
			t.Fatalf("[spec %d] expected %d allocations; got %d", specIndex, spec.expAlloc, got)
		}
		if buf.Len() != spec.expLen {
			t.Fatalf("[spec %d] expected capacity %d; got %d", specIndex, spec.expLen, buf.Len())
		}
	}

	if count, _ := ctx.Live(); count != 1 {
		t.Fatalf("expected replaced buffers to be released; got %d live buffers", count)
	}
}

func TestWithMappedUnmapsOnError(t *testing.T) {
	ctx := NewContext()
	buf, err := device.CreateBuffer[byte](ctx, "test", 8, device.MemReadOnly)
	if err != nil {
		t.Fatal(err)
	}

	expErr := errors.New("write failed")
	err = device.WithMapped(ctx, 0, buf, device.MapWrite, func([]byte) error { return expErr })
	if !errors.Is(err, expErr) {
		t.Fatalf("expected callback error to be returned; got %v", err)
	}

	// A second map must succeed if the first one was released
	err = device.WithMapped(ctx, 0, buf, device.MapWrite, func([]byte) error { return nil })
	if err != nil {
		t.Fatalf("expected buffer to be unmapped after a failed write; got %v", err)
	}
}
