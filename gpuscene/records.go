package gpuscene

import (
	"math"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// The record definitions in this file are shared with the device kernels.
// Field order, padding and sizes must match the kernel side declarations.

// Shape record. Instances share the vertex and index ranges of their base
// mesh but carry their own transform, material and volume.
type Shape struct {
	ID          int32
	StartIdx    int32
	StartVtx    int32
	NumPrims    int32
	MaterialIdx int32
	VolumeIdx   int32
	Mask        uint32
	padding     uint32

	// Row-major object to world transform and its inverse.
	Transform    [4]types.Vec4
	InvTransform [4]types.Vec4

	LinearVelocity  types.Vec4
	AngularVelocity types.Vec4
}

// Set the shape transform.
func (s *Shape) SetTransform(m types.Mat4) {
	s.Transform = m.Rows()
	s.InvTransform = m.Inv().Rows()
}

// Device material types. Single BxDF materials use the BxDF type value.
const (
	MaterialMix          uint32 = 0x100
	MaterialLayered      uint32 = 0x101
	MaterialFresnelBlend uint32 = 0x102
	MaterialUber         uint32 = 0x200
)

// The number of payload words in a material record.
const materialPayloadWords = 28

// Materials share a single record type. The contents of the payload depend
// on the material type:
//
// - single BxDF:
//   - [0-3] albedo
//   - [4] albedo texture
//   - [5] ior
//   - [6] fresnel
//   - [7] roughness
//   - [8] roughness texture
//
// - compound:
//   - [0] base material
//   - [1] top material
//   - [2] ior
//   - [3] weight
//   - [4] weight texture
//
// - uber:
//   - [0] shader configuration key (layer mask and reflection mode)
//   - [1] flags
//   - [2..] one input map id per uber input
//
// Texture and material references are indices; -1 means none.
type Material struct {
	Type         uint32
	Thin         uint32
	NormalMapIdx int32
	BumpFlag     uint32

	Payload [materialPayloadWords]uint32
}

// Uber material flags.
const (
	UberFlagRefractionLinked    uint32 = 1 << 0
	UberFlagEmissionDoubleSided uint32 = 1 << 1
	UberFlagSSSMultiscatter     uint32 = 1 << 2
)

// Set the parameters of a single BxDF material.
func (m *Material) SetSingle(albedo types.Vec4, albedoIdx int32, ior, fresnel, roughness float32, roughnessIdx int32) {
	for i := 0; i < 4; i++ {
		m.Payload[i] = math.Float32bits(albedo[i])
	}
	m.Payload[4] = uint32(albedoIdx)
	m.Payload[5] = math.Float32bits(ior)
	m.Payload[6] = math.Float32bits(fresnel)
	m.Payload[7] = math.Float32bits(roughness)
	m.Payload[8] = uint32(roughnessIdx)
}

// Get the albedo and albedo texture index of a single BxDF material.
func (m *Material) Albedo() (types.Vec4, int32) {
	var v types.Vec4
	for i := 0; i < 4; i++ {
		v[i] = math.Float32frombits(m.Payload[i])
	}
	return v, int32(m.Payload[4])
}

// Get the roughness and roughness texture index of a single BxDF material.
func (m *Material) Roughness() (float32, int32) {
	return math.Float32frombits(m.Payload[7]), int32(m.Payload[8])
}

// Set the parameters of a compound material.
func (m *Material) SetCompound(baseIdx, topIdx int32, ior, weight float32, weightIdx int32) {
	m.Payload[0] = uint32(baseIdx)
	m.Payload[1] = uint32(topIdx)
	m.Payload[2] = math.Float32bits(ior)
	m.Payload[3] = math.Float32bits(weight)
	m.Payload[4] = uint32(weightIdx)
}

// Get the child material indices of a compound material.
func (m *Material) Children() (baseIdx, topIdx int32) {
	return int32(m.Payload[0]), int32(m.Payload[1])
}

// Get the blend weight and weight texture index of a compound material.
func (m *Material) Weight() (float32, int32) {
	return math.Float32frombits(m.Payload[3]), int32(m.Payload[4])
}

// Set the configuration key, flags and input map ids of an uber material.
func (m *Material) SetUber(key, flags uint32, inputs []int32) {
	if len(inputs) > materialPayloadWords-2 {
		panic("gpuscene: too many uber material inputs")
	}
	m.Payload[0] = key
	m.Payload[1] = flags
	for i, id := range inputs {
		m.Payload[2+i] = uint32(id)
	}
}

func (m *Material) UberKey() uint32 { return m.Payload[0] }
func (m *Material) UberFlags() uint32 { return m.Payload[1] }

// Get the input map id stored in an uber input slot.
func (m *Material) UberInput(slot int) int32 {
	return int32(m.Payload[2+slot])
}

// Device light types.
const (
	LightPoint int32 = iota
	LightDirectional
	LightSpot
	LightArea
	LightIBL
)

// Light record.
type Light struct {
	Type int32

	// Area lights: the shape record and triangle that emit light.
	ShapeIdx int32
	PrimIdx  int32
	padding  int32

	Position  types.Vec4
	Direction types.Vec4
	Radiance  types.Vec4

	// Spot lights: cosines of the inner and outer cone angles.
	Cone types.Vec4

	// Image based lights: main, reflection, refraction, transparency and
	// background texture indices.
	TexIdx             int32
	ReflectionTexIdx   int32
	RefractionTexIdx   int32
	TransparencyTexIdx int32
	BackgroundTexIdx   int32
	Multiplier         float32
	padding2           [2]int32
}

// Volume record.
type Volume struct {
	Type          int32
	PhaseFunc     int32
	AbsorptionIdx int32
	G             float32

	Absorption types.Vec4
	Scattering types.Vec4
	Emission   types.Vec4
}

const (
	VolumeHomogeneous int32 = iota
)

const (
	PhaseUniform int32 = iota
	PhaseHenyeyGreenstein
)

// Texture record. All texture data lives in a single buffer.
type Texture struct {
	Width      int32
	Height     int32
	Depth      int32
	Format     int32
	DataOffset int32
	Size       int32
	padding    [2]int32
}

// Alignment of each texture inside the texture data buffer.
const TextureDataAlignment = 16

// Device camera types.
type CameraType int32

const (
	CameraPerspective CameraType = iota
	CameraPhysicalPerspective
	CameraOrthographic
)

func (ct CameraType) String() string {
	switch ct {
	case CameraPerspective:
		return "perspective"
	case CameraPhysicalPerspective:
		return "physical perspective"
	case CameraOrthographic:
		return "orthographic"
	}
	return "unknown"
}

// Camera record.
type Camera struct {
	Forward  types.Vec4
	Right    types.Vec4
	Up       types.Vec4
	Position types.Vec4

	SensorSize types.Vec2
	DepthRange types.Vec2

	AspectRatio   float32
	FocalLength   float32
	FocusDistance float32
	Aperture      float32

	VolumeIdx int32
	Type      CameraType
	padding   [2]int32
}

// Input map leaf value types.
const (
	InputMapFloat3 uint32 = iota
	InputMapFloat
	InputMapInt
)

// Input map leaf record. Constants store their value in the first three
// words; samplers store the texture index in the first word.
type InputMapData struct {
	Value [3]uint32
	Type  uint32
}

func (d *InputMapData) SetFloat3(v types.Vec3) {
	for i := 0; i < 3; i++ {
		d.Value[i] = math.Float32bits(v[i])
	}
	d.Type = InputMapFloat3
}

func (d *InputMapData) SetFloat(f float32) {
	d.Value = [3]uint32{math.Float32bits(f)}
	d.Type = InputMapFloat
}

func (d *InputMapData) SetInt(i int32) {
	d.Value = [3]uint32{uint32(i)}
	d.Type = InputMapInt
}

func (d *InputMapData) Float3() types.Vec3 {
	return types.XYZ(math.Float32frombits(d.Value[0]), math.Float32frombits(d.Value[1]), math.Float32frombits(d.Value[2]))
}

func (d *InputMapData) Int() int32 {
	return int32(d.Value[0])
}
