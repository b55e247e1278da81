package scene

import (
	"strings"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// LayerMask selects the shading layers enabled on an uber material.
type LayerMask uint32

const (
	EmissionLayer      LayerMask = 0x1
	TransparencyLayer  LayerMask = 0x2
	CoatingLayer       LayerMask = 0x4
	ReflectionLayer    LayerMask = 0x8
	DiffuseLayer       LayerMask = 0x10
	RefractionLayer    LayerMask = 0x20
	SSSLayer           LayerMask = 0x40
	ShadingNormalLayer LayerMask = 0x80

	AllLayers LayerMask = 0xFF
)

var layerNames = []struct {
	layer LayerMask
	name  string
}{
	{EmissionLayer, "emission"},
	{TransparencyLayer, "transparency"},
	{CoatingLayer, "coating"},
	{ReflectionLayer, "reflection"},
	{DiffuseLayer, "diffuse"},
	{RefractionLayer, "refraction"},
	{SSSLayer, "sss"},
	{ShadingNormalLayer, "shading_normal"},
}

// Check if all layers in l2 are enabled.
func (l LayerMask) Has(l2 LayerMask) bool {
	return l&l2 == l2
}

func (l LayerMask) String() string {
	var parts []string
	for _, ln := range layerNames {
		if l.Has(ln.layer) {
			parts = append(parts, ln.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Parse a layer name as returned by LayerMask.String.
func ParseLayer(name string) (LayerMask, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, ln := range layerNames {
		if ln.name == name {
			return ln.layer, true
		}
	}
	return 0, false
}

// The reflection workflow of an uber material.
type ReflectionMode uint8

const (
	// Use the compiler default.
	ReflectionDefault ReflectionMode = iota
	// Fresnel reflectance driven by the reflection IOR.
	ReflectionPBR
	// Fresnel reflectance driven by the metalness input.
	ReflectionMetalness
)

// UberInput describes one named input of the uber material. The position of
// an input in UberInputs is its slot in the device material record.
type UberInput struct {
	Name  string
	Layer LayerMask

	// Field name in the device-side shader data structure.
	Field string

	// Scalar inputs are read as float; all others as float4.
	Scalar bool

	// Non-default modes restrict the input to one reflection workflow.
	Mode ReflectionMode

	Default types.Vec4
}

// Inputs are grouped by layer in the order the device prepares them.
var UberInputs = []UberInput{
	{Name: "uberv2.emission.color", Layer: EmissionLayer, Field: "emission_color", Default: types.Splat4(1)},

	{Name: "uberv2.coating.color", Layer: CoatingLayer, Field: "coating_color", Default: types.Splat4(1)},
	{Name: "uberv2.coating.ior", Layer: CoatingLayer, Field: "coating_ior", Scalar: true, Default: types.Splat4(1.5)},

	{Name: "uberv2.reflection.color", Layer: ReflectionLayer, Field: "reflection_color", Default: types.Splat4(1)},
	{Name: "uberv2.reflection.roughness", Layer: ReflectionLayer, Field: "reflection_roughness", Scalar: true, Default: types.Splat4(0.5)},
	{Name: "uberv2.reflection.anisotropy", Layer: ReflectionLayer, Field: "reflection_anisotropy", Scalar: true},
	{Name: "uberv2.reflection.anisotropy_rotation", Layer: ReflectionLayer, Field: "reflection_anisotropy_rotation", Scalar: true},
	{Name: "uberv2.reflection.ior", Layer: ReflectionLayer, Field: "reflection_ior", Scalar: true, Mode: ReflectionPBR, Default: types.Splat4(1.5)},
	{Name: "uberv2.reflection.metalness", Layer: ReflectionLayer, Field: "reflection_metalness", Scalar: true, Mode: ReflectionMetalness},

	{Name: "uberv2.diffuse.color", Layer: DiffuseLayer, Field: "diffuse_color", Default: types.Splat4(1)},

	{Name: "uberv2.refraction.color", Layer: RefractionLayer, Field: "refraction_color", Default: types.Splat4(1)},
	{Name: "uberv2.refraction.roughness", Layer: RefractionLayer, Field: "refraction_roughness", Scalar: true, Default: types.Splat4(0.5)},
	{Name: "uberv2.refraction.ior", Layer: RefractionLayer, Field: "refraction_ior", Scalar: true, Default: types.Splat4(1.5)},

	{Name: "uberv2.transparency", Layer: TransparencyLayer, Field: "transparency", Scalar: true},

	{Name: "uberv2.shading_normal", Layer: ShadingNormalLayer, Field: "shading_normal"},

	{Name: "uberv2.sss.absorption_color", Layer: SSSLayer, Field: "sss_absorption_color"},
	{Name: "uberv2.sss.scatter_color", Layer: SSSLayer, Field: "sss_scatter_color"},
	{Name: "uberv2.sss.absorption_distance", Layer: SSSLayer, Field: "sss_absorption_distance"},
	{Name: "uberv2.sss.scatter_distance", Layer: SSSLayer, Field: "sss_scatter_distance"},
	{Name: "uberv2.sss.scatter_direction", Layer: SSSLayer, Field: "sss_scatter_direction", Scalar: true},
	{Name: "uberv2.sss.subsurface_color", Layer: SSSLayer, Field: "sss_subsurface_color", Default: types.Splat4(1)},
}

// Get the index of an uber input by name.
func UberInputSlot(name string) (int, bool) {
	for i, in := range UberInputs {
		if in.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Check if an input is read by a material with the given layers and resolved
// reflection mode.
func (in UberInput) ActiveFor(layers LayerMask, mode ReflectionMode) bool {
	if !layers.Has(in.Layer) {
		return false
	}
	return in.Mode == ReflectionDefault || in.Mode == mode
}
