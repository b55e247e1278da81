package scene

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
	"github.com/x448/float16"
)

type TextureFormat uint32

// Supported texture formats. All formats store 4 channels.
const (
	// 8 bits per channel, normalized.
	RGBA8 TextureFormat = iota
	// 16 bits per channel, half floats.
	RGBA16
	// 32 bits per channel, floats.
	RGBA32
)

func (f TextureFormat) String() string {
	switch f {
	case RGBA8:
		return "RGBA8"
	case RGBA16:
		return "RGBA16"
	case RGBA32:
		return "RGBA32"
	}
	return fmt.Sprintf("TextureFormat(%d)", uint32(f))
}

// Get the size of one texel in bytes.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case RGBA8:
		return 4
	case RGBA16:
		return 8
	default:
		return 16
	}
}

// A 2D or 3D texture holding raw pixel data.
type Texture struct {
	Object

	Name string

	data   []byte
	width  int
	height int
	depth  int
	format TextureFormat
}

// Create a texture. The data length must match the dimensions and format.
func NewTexture(data []byte, width, height, depth int, format TextureFormat) (*Texture, error) {
	t := &Texture{}
	if err := t.SetData(data, width, height, depth, format); err != nil {
		return nil, err
	}
	return t, nil
}

// Replace texture contents.
func (t *Texture) SetData(data []byte, width, height, depth int, format TextureFormat) error {
	if format > RGBA32 {
		return fmt.Errorf("texture %q: unsupported format %d", t.Name, format)
	}
	if depth < 1 {
		depth = 1
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("texture %q: invalid dimensions %dx%dx%d", t.Name, width, height, depth)
	}
	expLen := width * height * depth * format.BytesPerPixel()
	if len(data) != expLen {
		return fmt.Errorf("texture %q: expected %d bytes of %s data for %dx%dx%d texture; got %d", t.Name, expLen, format, width, height, depth, len(data))
	}

	t.data = data
	t.width, t.height, t.depth = width, height, depth
	t.format = format
	t.SetDirty()
	return nil
}

func (t *Texture) Data() []byte { return t.data }
func (t *Texture) Width() int { return t.width }
func (t *Texture) Height() int { return t.height }
func (t *Texture) Depth() int { return t.depth }
func (t *Texture) Format() TextureFormat { return t.format }
func (t *Texture) Size() int { return len(t.data) }

// Get the texel at the given position as a float4.
func (t *Texture) Texel(x, y, z int) types.Vec4 {
	bpp := t.format.BytesPerPixel()
	off := ((z*t.height+y)*t.width + x) * bpp
	px := t.data[off : off+bpp]

	var out types.Vec4
	for c := 0; c < 4; c++ {
		switch t.format {
		case RGBA8:
			out[c] = float32(px[c]) / 255.0
		case RGBA16:
			out[c] = float16.Frombits(binary.LittleEndian.Uint16(px[c*2:])).Float32()
		default:
			out[c] = math.Float32frombits(binary.LittleEndian.Uint32(px[c*4:]))
		}
	}
	return out
}

// Calculate the average texel value.
func (t *Texture) Average() types.Vec4 {
	var sum [4]float64
	for z := 0; z < t.depth; z++ {
		for y := 0; y < t.height; y++ {
			for x := 0; x < t.width; x++ {
				texel := t.Texel(x, y, z)
				for c := 0; c < 4; c++ {
					sum[c] += float64(texel[c])
				}
			}
		}
	}

	n := float64(t.width * t.height * t.depth)
	if n == 0 {
		return types.Vec4{}
	}
	return types.Vec4{float32(sum[0] / n), float32(sum[1] / n), float32(sum[2] / n), float32(sum[3] / n)}
}
