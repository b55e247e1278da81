package opencl

import (
	"bytes"
	"fmt"
	"strings"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

const (
	platformBufferSize = 100
	deviceBufferSize   = 100
	dataBufferSize     = 1024
)

// Information about a system's opencl platform and supported devices.
type PlatformInfo struct {
	Profile    string
	Version    string
	Name       string
	Vendor     string
	Extensions string
	Devices    []*Device
}

func (pl PlatformInfo) String() string {
	var buf bytes.Buffer

	fmt.Fprintf(
		&buf,
		"Version:    %s\nName:       %s\nVendor:     %s\nExtensions: %s\nDevices:\n",
		pl.Version,
		pl.Name,
		pl.Vendor,
		pl.Extensions,
	)

	for dIdx, d := range pl.Devices {
		fmt.Fprintf(&buf, "  Device %02d:\n", dIdx)
		buf.WriteString(indentRegex.ReplaceAllString(d.String(), "    "))
		buf.WriteString("\n\n")
	}

	return buf.String()
}

// Get information about supported opencl platforms and devices.
func GetPlatformInfo() ([]PlatformInfo, error) {
	pids := make([]cl.PlatformID, platformBufferSize)
	pidCount := uint32(0)
	cl.GetPlatformIDs(uint32(len(pids)), &pids[0], &pidCount)

	infoList := make([]PlatformInfo, int(pidCount))
	for pIdx := 0; pIdx < int(pidCount); pIdx++ {
		pid := pids[pIdx]
		infoList[pIdx] = PlatformInfo{
			Profile: readString(func(ptr unsafe.Pointer, dataLen *uint64) {
				cl.GetPlatformInfo(pid, cl.PLATFORM_PROFILE, dataBufferSize, ptr, dataLen)
			}),
			Version: readString(func(ptr unsafe.Pointer, dataLen *uint64) {
				cl.GetPlatformInfo(pid, cl.PLATFORM_VERSION, dataBufferSize, ptr, dataLen)
			}),
			Name: readString(func(ptr unsafe.Pointer, dataLen *uint64) {
				cl.GetPlatformInfo(pid, cl.PLATFORM_NAME, dataBufferSize, ptr, dataLen)
			}),
			Vendor: readString(func(ptr unsafe.Pointer, dataLen *uint64) {
				cl.GetPlatformInfo(pid, cl.PLATFORM_VENDOR, dataBufferSize, ptr, dataLen)
			}),
			Extensions: readString(func(ptr unsafe.Pointer, dataLen *uint64) {
				cl.GetPlatformInfo(pid, cl.PLATFORM_EXTENSIONS, dataBufferSize, ptr, dataLen)
			}),
		}

		devices := make([]cl.DeviceId, deviceBufferSize)
		deviceCount := uint32(0)

		// Enumerate CPU devices
		cl.GetDeviceIDs(pid, cl.DEVICE_TYPE_CPU, uint32(deviceBufferSize), &devices[0], &deviceCount)
		infoList[pIdx].Devices = appendDevices(infoList[pIdx].Devices, devices[:deviceCount], CpuDevice)

		// Enumerate GPU devices
		deviceCount = 0
		cl.GetDeviceIDs(pid, cl.DEVICE_TYPE_GPU, uint32(deviceBufferSize), &devices[0], &deviceCount)
		infoList[pIdx].Devices = appendDevices(infoList[pIdx].Devices, devices[:deviceCount], GpuDevice)

		for _, dev := range infoList[pIdx].Devices {
			if err := dev.detectSpeed(); err != nil {
				return nil, err
			}
		}
	}

	return infoList, nil
}

// Scan all available opencl platforms and select devices that match the given query.
func SelectDevices(typeMask DeviceType, matchName string) ([]*Device, error) {
	platforms, err := GetPlatformInfo()
	if err != nil {
		return nil, err
	}
	list := make([]*Device, 0)
	for _, p := range platforms {
		for _, d := range p.Devices {
			if d.Type&typeMask != d.Type {
				continue
			}

			if matchName != "" && !strings.Contains(d.Name, matchName) {
				continue
			}

			list = append(list, d)
		}
	}
	return list, nil
}

// Invoke an opencl info query that fills a byte buffer and convert the
// null-terminated result to a string.
func readString(query func(ptr unsafe.Pointer, dataLen *uint64)) string {
	data := make([]byte, dataBufferSize)
	dataLen := uint64(0)
	query(unsafe.Pointer(&data[0]), &dataLen)
	if dataLen == 0 {
		return ""
	}
	return string(data[0 : dataLen-1])
}

func appendDevices(list []*Device, ids []cl.DeviceId, devType DeviceType) []*Device {
	for _, id := range ids {
		list = append(list, &Device{
			Name: readString(func(ptr unsafe.Pointer, dataLen *uint64) {
				cl.GetDeviceInfo(id, cl.DEVICE_NAME, dataBufferSize, ptr, dataLen)
			}),
			Id:   id,
			Type: devType,
		})
	}
	return list
}
