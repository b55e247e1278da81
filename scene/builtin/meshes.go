package builtin

import (
	"encoding/binary"
	"math"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
	"github.com/chewxy/math32"
	"github.com/x448/float16"
)

// Create a quad lying on the XZ plane facing +Y.
func Quad(size float32) *scene.Mesh {
	h := size * 0.5
	return mustMesh(
		[]types.Vec3{{-h, 0, -h}, {h, 0, -h}, {h, 0, h}, {-h, 0, h}},
		[]types.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		[]types.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		[]uint32{0, 2, 1, 0, 3, 2},
	)
}

// Create a UV sphere centered at the origin.
func Sphere(radius float32, rings, segments int) *scene.Mesh {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	var (
		vertices []types.Vec3
		normals  []types.Vec3
		uvs      []types.Vec2
		indices  []uint32
	)

	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		theta := v * math32.Pi
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			phi := u * 2 * math32.Pi

			n := types.XYZ(
				math32.Sin(theta)*math32.Cos(phi),
				math32.Cos(theta),
				math32.Sin(theta)*math32.Sin(phi),
			)
			vertices = append(vertices, n.Mul(radius))
			normals = append(normals, n)
			uvs = append(uvs, types.XY(u, v))
		}
	}

	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			i0 := r*stride + s
			i1 := i0 + stride
			indices = append(indices, i0, i1, i0+1, i0+1, i1, i1+1)
		}
	}

	return mustMesh(vertices, normals, uvs, indices)
}

// Create an axis aligned box centered at the origin.
func Box(size types.Vec3) *scene.Mesh {
	h := size.Mul(0.5)
	faces := []struct {
		n, u, v types.Vec3
	}{
		{types.XYZ(1, 0, 0), types.XYZ(0, 0, -1), types.XYZ(0, 1, 0)},
		{types.XYZ(-1, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0)},
		{types.XYZ(0, 1, 0), types.XYZ(1, 0, 0), types.XYZ(0, 0, -1)},
		{types.XYZ(0, -1, 0), types.XYZ(1, 0, 0), types.XYZ(0, 0, 1)},
		{types.XYZ(0, 0, 1), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)},
		{types.XYZ(0, 0, -1), types.XYZ(-1, 0, 0), types.XYZ(0, 1, 0)},
	}

	var (
		vertices []types.Vec3
		normals  []types.Vec3
		uvs      []types.Vec2
		indices  []uint32
	)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range [4]types.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.n.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1]))
			vertices = append(vertices, types.XYZ(p[0]*h[0], p[1]*h[1], p[2]*h[2]))
			normals = append(normals, f.n)
			uvs = append(uvs, types.XY(c[0]*0.5+0.5, c[1]*0.5+0.5))
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return mustMesh(vertices, normals, uvs, indices)
}

// Create an RGBA8 checkerboard texture.
func Checker(size, tiles int, a, b types.Vec3) *scene.Texture {
	data := make([]byte, size*size*4)
	tileSize := size / tiles
	if tileSize < 1 {
		tileSize = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/tileSize+y/tileSize)%2 == 1 {
				c = b
			}
			off := (y*size + x) * 4
			for ch := 0; ch < 3; ch++ {
				data[off+ch] = uint8(math32.Min(c[ch], 1) * 255)
			}
			data[off+3] = 255
		}
	}
	return mustTexture(data, size, size, scene.RGBA8)
}

// Create an RGBA16 vertical sky gradient suitable for image based lighting.
func SkyGradient(width, height int, horizon, zenith types.Vec3) *scene.Texture {
	data := make([]byte, width*height*8)
	for y := 0; y < height; y++ {
		t := float32(y) / float32(height)
		c := zenith.Mul(1 - t).Add(horizon.Mul(t))
		for x := 0; x < width; x++ {
			off := (y*width + x) * 8
			for ch := 0; ch < 4; ch++ {
				v := float32(1)
				if ch < 3 {
					v = c[ch]
				}
				binary.LittleEndian.PutUint16(data[off+ch*2:], float16.Fromfloat32(v).Bits())
			}
		}
	}
	return mustTexture(data, width, height, scene.RGBA16)
}

// Create an RGBA32 texture filled with a constant value.
func Solid(width, height int, v types.Vec4) *scene.Texture {
	data := make([]byte, width*height*16)
	for off := 0; off < len(data); off += 16 {
		for ch := 0; ch < 4; ch++ {
			binary.LittleEndian.PutUint32(data[off+ch*4:], math.Float32bits(v[ch]))
		}
	}
	return mustTexture(data, width, height, scene.RGBA32)
}

func mustMesh(vertices, normals []types.Vec3, uvs []types.Vec2, indices []uint32) *scene.Mesh {
	mesh, err := scene.NewMesh(vertices, normals, uvs, indices)
	if err != nil {
		panic(err)
	}
	return mesh
}

func mustTexture(data []byte, width, height int, format scene.TextureFormat) *scene.Texture {
	tex, err := scene.NewTexture(data, width, height, 1, format)
	if err != nil {
		panic(err)
	}
	return tex
}
