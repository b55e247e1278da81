package opencl

import (
	"errors"
	"testing"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
)

func TestBufferRoundTrip(t *testing.T) {
	dev := createCpuDevice(t)
	defer dev.Close()

	buf, err := device.CreateBuffer[float32](dev, "test", 16, device.MemReadWrite)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Release()

	err = device.WithMapped(dev, 0, buf, device.MapWrite, func(data []float32) error {
		for i := range data {
			data[i] = float32(i)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = device.WithMapped(dev, 0, buf, device.MapRead, func(data []float32) error {
		for i, v := range data {
			if v != float32(i) {
				t.Fatalf("expected element %d to be %f; got %f", i, float32(i), v)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDoubleMap(t *testing.T) {
	dev := createCpuDevice(t)
	defer dev.Close()

	buf, err := device.CreateBuffer[byte](dev, "test", 4, device.MemReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Release()

	if _, _, err = dev.MapBuffer(0, buf.Buffer, device.MapWrite); err != nil {
		t.Fatal(err)
	}
	if _, _, err = dev.MapBuffer(0, buf.Buffer, device.MapWrite); !errors.Is(err, device.ErrAlreadyMapped) {
		t.Fatalf("expected ErrAlreadyMapped; got %v", err)
	}
}

func TestBuildProgramErrors(t *testing.T) {
	dev := createCpuDevice(t)
	defer dev.Close()

	if err := dev.BuildProgram("__kernel void ok(__global float* out) { out[0] = 1.0f; }", ""); err != nil {
		t.Fatalf("expected valid program to build; got %v", err)
	}
	if err := dev.BuildProgram("__kernel void broken( {", ""); err == nil {
		t.Fatal("expected an error while building an invalid program")
	}
}

func createCpuDevice(t *testing.T) *Device {
	devList, err := SelectDevices(CpuDevice, "")
	if err != nil || len(devList) == 0 {
		t.Skip("no opencl CPU device available; check that opencl drivers are installed")
	}

	dev := devList[0]
	if err = dev.Init(); err != nil {
		t.Fatalf("error initializing device '%s': %v", dev.Name, err)
	}
	return dev
}
