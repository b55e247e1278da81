// Package gpuscene defines the device-resident representation of a compiled
// scene: fixed layout records shared with the render kernels and the set of
// buffers that hold them.
package gpuscene

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
	"github.com/olekukonko/tablewriter"
)

// Snapshot holds the device buffers of a compiled scene. Buffer capacities
// only grow; the element counts report how much of each buffer is in use.
type Snapshot struct {
	Vertices *device.TypedBuffer[types.Vec4]
	Normals  *device.TypedBuffer[types.Vec4]
	UVs      *device.TypedBuffer[types.Vec2]
	Indices  *device.TypedBuffer[uint32]
	Shapes   *device.TypedBuffer[Shape]

	Materials      *device.TypedBuffer[Material]
	Textures       *device.TypedBuffer[Texture]
	TextureData    *device.TypedBuffer[byte]
	Volumes        *device.TypedBuffer[Volume]
	InputMapLeaves *device.TypedBuffer[InputMapData]

	Lights            *device.TypedBuffer[Light]
	LightDistribution *device.TypedBuffer[uint32]

	Camera *device.TypedBuffer[Camera]

	NumVertices       int
	NumIndices        int
	NumShapes         int
	NumVisibleShapes  int
	NumMaterials      int
	NumTextures       int
	NumVolumes        int
	NumInputMapLeaves int
	NumLights         int

	// Index of the environment light or -1.
	EnvMapIdx int32

	// Index of the background texture or -1.
	BackgroundIdx int32

	CameraType CameraType

	// Statistics for the most recent compile.
	LastCompile CompileStats
}

// Create an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		EnvMapIdx:     -1,
		BackgroundIdx: -1,
	}
}

type namedBuffer struct {
	group string
	name  string
	count int
	size  int
}

func (s *Snapshot) buffers() []namedBuffer {
	return []namedBuffer{
		{"Geometry", "Vertices", s.NumVertices, s.Vertices.Size()},
		{"Geometry", "Normals", s.NumVertices, s.Normals.Size()},
		{"Geometry", "UVs", s.NumVertices, s.UVs.Size()},
		{"Geometry", "Indices", s.NumIndices, s.Indices.Size()},
		{"Geometry", "Shapes", s.NumShapes, s.Shapes.Size()},
		{"Materials", "Materials", s.NumMaterials, s.Materials.Size()},
		{"Materials", "Input map leaves", s.NumInputMapLeaves, s.InputMapLeaves.Size()},
		{"Materials", "Volumes", s.NumVolumes, s.Volumes.Size()},
		{"Textures", "Metadata", s.NumTextures, s.Textures.Size()},
		{"Textures", "Data", s.TextureData.Len(), s.TextureData.Size()},
		{"Lights", "Lights", s.NumLights, s.Lights.Size()},
		{"Lights", "Distribution", s.LightDistribution.Len(), s.LightDistribution.Size()},
		{"Camera", "Camera", 1, s.Camera.Size()},
	}
}

// Get the total number of allocated bytes.
func (s *Snapshot) DeviceMemory() int {
	total := 0
	for _, b := range s.buffers() {
		total += b.size
	}
	return total
}

// Build a tabular representation of the snapshot buffers.
func (s *Snapshot) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})

	lastGroup := ""
	for _, b := range s.buffers() {
		group := b.group
		if group == lastGroup {
			group = ""
		} else if lastGroup != "" {
			table.Append([]string{" ", " ", " ", " "})
		}
		lastGroup = b.group
		table.Append([]string{group, b.name, fmt.Sprint(b.count), fmtSize(b.size)})
	}
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(s.DeviceMemory()), " ")})

	table.Render()
	return buf.String()
}

// Release all device buffers.
func (s *Snapshot) Release() {
	s.Vertices.Release()
	s.Normals.Release()
	s.UVs.Release()
	s.Indices.Release()
	s.Shapes.Release()
	s.Materials.Release()
	s.Textures.Release()
	s.TextureData.Release()
	s.Volumes.Release()
	s.InputMapLeaves.Release()
	s.Lights.Release()
	s.LightDistribution.Release()
	s.Camera.Release()
}

// CategoryStats describes the work done for one dirty category.
type CategoryStats struct {
	Name          string
	Duration      time.Duration
	Items         int
	Reallocations int
}

// CompileStats describes a single compile pass.
type CompileStats struct {
	Duration   time.Duration
	Categories []CategoryStats
}

// Build a tabular representation of the compile statistics.
func (cs CompileStats) String() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Category", "Items", "Reallocations", "Time"})
	for _, c := range cs.Categories {
		table.Append([]string{c.Name, fmt.Sprint(c.Items), fmt.Sprint(c.Reallocations), c.Duration.String()})
	}
	table.SetFooter([]string{"Total", " ", " ", cs.Duration.String()})
	table.Render()
	return buf.String()
}

// Format a byte count with the appropriate byte/kb/mb unit.
func fmtSize(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1e3)
	}
	return fmt.Sprintf("%5.1f mb", float32(totalBytes)/1e6)
}
