package scene

import (
	"errors"
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

var (
	ErrNoSuchInput          = errors.New("no such material input")
	ErrUnsupportedInputType = errors.New("unsupported material input type")
)

type MaterialKind uint8

const (
	SingleBxdfMaterial MaterialKind = iota
	CompoundMaterial
	UberMaterial
)

func (k MaterialKind) String() string {
	switch k {
	case SingleBxdfMaterial:
		return "single"
	case CompoundMaterial:
		return "compound"
	case UberMaterial:
		return "uber"
	}
	return fmt.Sprintf("MaterialKind(%d)", uint8(k))
}

// The BxDF implemented by a single BxDF material.
type BxdfType uint8

const (
	BxdfZero BxdfType = iota
	BxdfLambert
	BxdfIdealReflect
	BxdfIdealRefract
	BxdfMicrofacetBeckmann
	BxdfMicrofacetGGX
	BxdfEmissive
	BxdfPassthrough
	BxdfTranslucent
	BxdfMicrofacetRefractionGGX
	BxdfMicrofacetRefractionBeckmann
)

// The blend operation of a compound material.
type CompoundType uint8

const (
	CompoundMix CompoundType = iota
	CompoundLayered
	CompoundFresnelBlend
)

type InputType uint8

const (
	InputFloat4 InputType = 1 << iota
	InputTexture
	InputMaterial
	InputMapValue
)

func (t InputType) String() string {
	switch t {
	case InputFloat4:
		return "float4"
	case InputTexture:
		return "texture"
	case InputMaterial:
		return "material"
	case InputMapValue:
		return "input map"
	}
	return fmt.Sprintf("InputType(%d)", uint8(t))
}

// InputValue is the value bound to a material input. Only the field that
// matches Type is meaningful.
type InputValue struct {
	Type     InputType
	Float    types.Vec4
	Texture  *Texture
	Material *Material
	Map      *InputMap
}

func Float4Value(v types.Vec4) InputValue { return InputValue{Type: InputFloat4, Float: v} }
func TextureValue(t *Texture) InputValue { return InputValue{Type: InputTexture, Texture: t} }
func MaterialValue(m *Material) InputValue { return InputValue{Type: InputMaterial, Material: m} }
func InputMapValueOf(m *InputMap) InputValue { return InputValue{Type: InputMapValue, Map: m} }

type input struct {
	name      string
	supported InputType
	value     InputValue
}

// Material is a closed variant over the supported material kinds.
type Material struct {
	Object

	Name string

	kind     MaterialKind
	bxdf     BxdfType
	compound CompoundType

	// Uber material state.
	layers              LayerMask
	reflectionMode      ReflectionMode
	refractionLinked    bool
	emissionDoubleSided bool
	sssMultiscatter     bool

	thin   bool
	inputs []*input
}

// Create a material that evaluates a single BxDF.
func NewSingleBxdfMaterial(bxdf BxdfType) *Material {
	m := &Material{kind: SingleBxdfMaterial, bxdf: bxdf}
	m.register("albedo", InputFloat4|InputTexture, Float4Value(types.Splat4(0.7)))
	m.register("normal", InputTexture, InputValue{Type: InputTexture})
	m.register("bump", InputTexture, InputValue{Type: InputTexture})
	m.register("ior", InputFloat4, Float4Value(types.Splat4(1)))
	m.register("fresnel", InputFloat4, Float4Value(types.Splat4(0)))
	m.register("roughness", InputFloat4|InputTexture, Float4Value(types.Splat4(0.99)))
	return m
}

// Create a material that blends two materials.
func NewCompoundMaterial(op CompoundType, base, top *Material) *Material {
	m := &Material{kind: CompoundMaterial, compound: op}
	m.register("base_material", InputMaterial, MaterialValue(base))
	m.register("top_material", InputMaterial, MaterialValue(top))
	m.register("ior", InputFloat4, Float4Value(types.Splat4(1)))
	m.register("weight", InputFloat4|InputTexture, Float4Value(types.Splat4(0.5)))
	return m
}

// Create a layered uber material. Every input is bound to a constant input
// map holding its default value.
func NewUberMaterial(layers LayerMask) *Material {
	m := &Material{kind: UberMaterial, layers: layers & AllLayers}
	for _, in := range UberInputs {
		var def *InputMap
		if in.Scalar {
			def = ConstantFloat(in.Default[0])
		} else {
			def = ConstantFloat3(in.Default.Vec3())
		}
		m.register(in.Name, InputMapValue, InputMapValueOf(def))
	}
	return m
}

func (m *Material) register(name string, supported InputType, value InputValue) {
	m.inputs = append(m.inputs, &input{name: name, supported: supported, value: value})
}

func (m *Material) lookup(name string) (*input, error) {
	for _, in := range m.inputs {
		if in.name == name {
			return in, nil
		}
	}
	return nil, fmt.Errorf("material %q: %w %q", m.Name, ErrNoSuchInput, name)
}

// Bind a value to a named input. Uber materials accept float4 and texture
// values by wrapping them into constant and sampler input maps.
func (m *Material) SetInput(name string, value InputValue) error {
	in, err := m.lookup(name)
	if err != nil {
		return err
	}

	if m.kind == UberMaterial {
		switch value.Type {
		case InputFloat4:
			if slot, _ := UberInputSlot(name); UberInputs[slot].Scalar {
				value = InputMapValueOf(ConstantFloat(value.Float[0]))
			} else {
				value = InputMapValueOf(ConstantFloat3(value.Float.Vec3()))
			}
		case InputTexture:
			value = InputMapValueOf(Sampler(value.Texture))
		}
	}

	if in.supported&value.Type == 0 {
		return fmt.Errorf("material %q: %w %s for input %q", m.Name, ErrUnsupportedInputType, value.Type, name)
	}
	if value.Type == InputMapValue && value.Map == nil {
		return fmt.Errorf("material %q: nil input map for input %q", m.Name, name)
	}
	if value.Type == InputMaterial && value.Material == m {
		return fmt.Errorf("material %q: input %q cannot reference the material itself", m.Name, name)
	}

	in.value = value
	m.SetDirty()
	return nil
}

// Get the value of a named input.
func (m *Material) Input(name string) (InputValue, error) {
	in, err := m.lookup(name)
	if err != nil {
		return InputValue{}, err
	}
	return in.value, nil
}

// Get the value of a named input, panicking if the input does not exist or
// is bound to a different type. Used by serializers that rely on a fixed
// input schema.
func (m *Material) MustInput(name string, accepted InputType) InputValue {
	in, err := m.lookup(name)
	if err != nil {
		panic(err)
	}
	if in.value.Type&accepted == 0 {
		panic(fmt.Sprintf("material %q: input %q holds a %s value; expected %s", m.Name, name, in.value.Type, accepted))
	}
	return in.value
}

// Get the names of all inputs in registration order.
func (m *Material) InputNames() []string {
	names := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		names[i] = in.name
	}
	return names
}

func (m *Material) Kind() MaterialKind { return m.kind }
func (m *Material) Bxdf() BxdfType { return m.bxdf }
func (m *Material) Compound() CompoundType { return m.compound }
func (m *Material) Layers() LayerMask { return m.layers }
func (m *Material) Thin() bool { return m.thin }

func (m *Material) ReflectionMode() ReflectionMode { return m.reflectionMode }
func (m *Material) RefractionLinked() bool { return m.refractionLinked }
func (m *Material) EmissionDoubleSided() bool { return m.emissionDoubleSided }
func (m *Material) SSSMultiscatter() bool { return m.sssMultiscatter }

func (m *Material) SetThin(thin bool) {
	m.thin = thin
	m.SetDirty()
}

func (m *Material) SetBxdf(bxdf BxdfType) {
	m.bxdf = bxdf
	m.SetDirty()
}

func (m *Material) SetLayers(layers LayerMask) {
	m.layers = layers & AllLayers
	m.SetDirty()
}

func (m *Material) SetReflectionMode(mode ReflectionMode) {
	m.reflectionMode = mode
	m.SetDirty()
}

// Link the refraction IOR to the reflection IOR.
func (m *Material) SetRefractionLinked(linked bool) {
	m.refractionLinked = linked
	m.SetDirty()
}

func (m *Material) SetEmissionDoubleSided(doubleSided bool) {
	m.emissionDoubleSided = doubleSided
	m.SetDirty()
}

func (m *Material) SetSSSMultiscatter(multiscatter bool) {
	m.sssMultiscatter = multiscatter
	m.SetDirty()
}

// Get the materials referenced by this material's inputs.
func (m *Material) Children() []*Material {
	var out []*Material
	for _, in := range m.inputs {
		if in.value.Type == InputMaterial && in.value.Material != nil {
			out = append(out, in.value.Material)
		}
	}
	return out
}

// Get the textures directly referenced by this material's inputs.
func (m *Material) Textures() []*Texture {
	var out []*Texture
	for _, in := range m.inputs {
		if in.value.Type == InputTexture && in.value.Texture != nil {
			out = append(out, in.value.Texture)
		}
	}
	return out
}

// Get the root input maps read by an uber material with the given resolved
// reflection mode, in UberInputs order. Inputs of disabled layers are nil.
func (m *Material) ActiveInputMaps(mode ReflectionMode) []*InputMap {
	if m.kind != UberMaterial {
		return nil
	}
	out := make([]*InputMap, len(UberInputs))
	for slot, desc := range UberInputs {
		if !desc.ActiveFor(m.layers, mode) {
			continue
		}
		out[slot] = m.inputs[slot].value.Map
	}
	return out
}
