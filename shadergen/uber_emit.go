package shadergen

import (
	"fmt"
	"strings"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
)

const (
	prepareInputsParams = "DifferentialGeometry const* dg, GLOBAL InputMapData const* restrict input_map_values, GLOBAL Material const* restrict material, TEXTURE_ARG_LIST, UberV2ShaderData* shader_data"
	getBxDFTypeParams   = "UberV2ShaderData const* shader_data, DifferentialGeometry* dg, float3 wi, Sampler* sampler, SAMPLER_ARG_LIST"
	sampleParams        = "DifferentialGeometry const* dg, UberV2ShaderData const* shader_data, float3 wi, TEXTURE_ARG_LIST, float2 sample, float3* wo, float* pdf"
)

// A shading layer that can be picked by the BxDF selection function.
type shadingLayer struct {
	layer     scene.LayerMask
	component string
	sampler   string
}

// Shading layers in selection order; each layer is tested against the ones
// below it.
var shadingLayers = []shadingLayer{
	{scene.TransparencyLayer, "kBxdfUberV2SampleTransparency", "UberV2_Passthrough_Sample"},
	{scene.RefractionLayer, "kBxdfUberV2SampleRefraction", "UberV2_Refraction_Sample"},
	{scene.CoatingLayer, "kBxdfUberV2SampleCoating", "UberV2_Coating_Sample"},
	{scene.ReflectionLayer, "kBxdfUberV2SampleReflection", "UberV2_Reflection_Sample"},
	{scene.DiffuseLayer, "kBxdfUberV2SampleDiffuse", "UberV2_Lambert_Sample"},
}

// Emit the function that fills the shader data structure by evaluating the
// input maps referenced by the material record.
func (g *UberGenerator) emitPrepareInputs(fns *Functions) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "void %s(%s)\n{\n", fns.PrepareInputsName, prepareInputsParams)

	layers, mode := fns.Config.Layers(), fns.Config.Mode()
	for slot, in := range scene.UberInputs {
		if !in.ActiveFor(layers, mode) {
			continue
		}
		getter := "GetInputMapFloat4"
		if in.Scalar {
			getter = "GetInputMapFloat"
		}
		fmt.Fprintf(&buf, "    shader_data->%s = %s(material->uberv2.inputs[%d], dg, input_map_values, TEXTURE_ARGS);\n", in.Field, getter, slot)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Emit the function that stochastically picks the layer to sample and
// returns the BxDF flags for the picked layer.
func (g *UberGenerator) emitGetBxDFType(fns *Functions) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "int %s(%s)\n{\n", fns.GetBxDFTypeName, getBxDFTypeParams)

	cfg := fns.Config
	if cfg.Has(scene.EmissionLayer) {
		buf.WriteString("    int bxdf_flags = kBxdfFlagsEmissive;\n")
	} else {
		buf.WriteString("    int bxdf_flags = 0;\n")
	}

	enabled := make([]shadingLayer, 0, len(shadingLayers))
	for _, sl := range shadingLayers {
		if cfg.Has(sl.layer) {
			enabled = append(enabled, sl)
		}
	}
	if len(enabled) == 0 {
		buf.WriteString("    Bxdf_UberV2_SetSampledComponent(dg, kBxdfUberV2SampleNone);\n")
		buf.WriteString("    return bxdf_flags;\n}\n")
		return buf.String()
	}

	// Fresnel terms are only needed when a refraction, coating or reflection
	// layer is tested against a layer below it.
	var needsFresnel, reflectionTested bool
	for _, sl := range enabled[:len(enabled)-1] {
		if sl.layer != scene.TransparencyLayer {
			needsFresnel = true
		}
		if sl.layer == scene.ReflectionLayer {
			reflectionTested = true
		}
	}
	if needsFresnel {
		buf.WriteString("    float ndotwi = dot(dg->n, wi);\n")
	}
	if reflectionTested {
		buf.WriteString("    float top_ior = 1.0f;\n")
	}

	eps := fmtFloat(g.roughnessEpsilon)
	for i, sl := range enabled {
		last := i == len(enabled)-1
		var cond, flags string

		switch sl.layer {
		case scene.TransparencyLayer:
			cond = "Sampler_Sample1D(sampler, SAMPLER_ARGS) < shader_data->transparency"
			flags = "bxdf_flags | kBxdfFlagsSingular | kBxdfFlagsTransparency"
		case scene.RefractionLayer:
			topIOR := "1.0f"
			if cfg.Has(scene.CoatingLayer) {
				topIOR = "shader_data->coating_ior"
			}
			cond = fmt.Sprintf("Sampler_Sample1D(sampler, SAMPLER_ARGS) >= CalculateFresnel(%s, shader_data->refraction_ior, ndotwi)", topIOR)
			flags = fmt.Sprintf("bxdf_flags | (shader_data->refraction_roughness < %sf ? kBxdfFlagsSingular : 0)", eps)
		case scene.CoatingLayer:
			cond = "Sampler_Sample1D(sampler, SAMPLER_ARGS) < CalculateFresnel(1.0f, shader_data->coating_ior, ndotwi)"
			flags = "bxdf_flags | kBxdfFlagsBrdf | kBxdfFlagsSingular"
		case scene.ReflectionLayer:
			if cfg.Mode() == scene.ReflectionMetalness {
				cond = "Sampler_Sample1D(sampler, SAMPLER_ARGS) < mix(CalculateFresnel(top_ior, 1.5f, ndotwi), 1.0f, shader_data->reflection_metalness)"
			} else {
				cond = "Sampler_Sample1D(sampler, SAMPLER_ARGS) < CalculateFresnel(top_ior, shader_data->reflection_ior, ndotwi)"
			}
			flags = fmt.Sprintf("bxdf_flags | kBxdfFlagsBrdf | (shader_data->reflection_roughness < %sf ? kBxdfFlagsSingular : 0)", eps)
		case scene.DiffuseLayer:
			flags = "bxdf_flags | kBxdfFlagsBrdf | kBxdfFlagsDiffuse"
			if cfg.Has(scene.SSSLayer) {
				flags += " | kBxdfFlagsSubsurface"
			}
		}

		if last {
			fmt.Fprintf(&buf, "    Bxdf_UberV2_SetSampledComponent(dg, %s);\n", sl.component)
			fmt.Fprintf(&buf, "    return %s;\n", flags)
			break
		}

		fmt.Fprintf(&buf, "    if (%s)\n    {\n", cond)
		fmt.Fprintf(&buf, "        Bxdf_UberV2_SetSampledComponent(dg, %s);\n", sl.component)
		fmt.Fprintf(&buf, "        return %s;\n", flags)
		buf.WriteString("    }\n")

		if sl.layer == scene.CoatingLayer && reflectionTested {
			buf.WriteString("    top_ior = shader_data->coating_ior;\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Emit the function that samples the layer picked by the selection function.
func (g *UberGenerator) emitSample(fns *Functions) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "float3 %s(%s)\n{\n", fns.SampleName, sampleParams)
	buf.WriteString("    switch (Bxdf_UberV2_GetSampledComponent(dg))\n    {\n")
	for _, sl := range shadingLayers {
		if !fns.Config.Has(sl.layer) {
			continue
		}
		fmt.Fprintf(&buf, "    case %s:\n", sl.component)
		fmt.Fprintf(&buf, "        return %s(shader_data, wi, TEXTURE_ARGS, sample, wo, pdf);\n", sl.sampler)
	}
	buf.WriteString("    }\n\n")
	buf.WriteString("    *pdf = 0.0f;\n    return (float3)(0.0f);\n}\n")
	return buf.String()
}

// Emit the structure that receives the prepared uber inputs.
func emitShaderData(buf *strings.Builder) {
	buf.WriteString("typedef struct\n{\n")
	for _, in := range scene.UberInputs {
		typ := "float4"
		if in.Scalar {
			typ = "float"
		}
		fmt.Fprintf(buf, "    %s %s;\n", typ, in.Field)
	}
	buf.WriteString("} UberV2ShaderData;\n\n")
}

type dispatch struct {
	name     string
	ret      string
	params   string
	args     string
	fallback string
}

var (
	prepareInputsDispatch = dispatch{
		name:   "UberV2PrepareInputs",
		ret:    "void",
		params: prepareInputsParams,
		args:   "dg, input_map_values, material, TEXTURE_ARGS, shader_data",
	}
	getBxDFTypeDispatch = dispatch{
		name:     "UberV2GetBxDFType",
		ret:      "int",
		params:   "GLOBAL Material const* restrict material, " + getBxDFTypeParams,
		args:     "shader_data, dg, wi, sampler, SAMPLER_ARGS",
		fallback: "    return 0;\n",
	}
	sampleDispatch = dispatch{
		name:     "UberV2Sample",
		ret:      "float3",
		params:   "GLOBAL Material const* restrict material, " + sampleParams,
		args:     "dg, shader_data, wi, TEXTURE_ARGS, sample, wo, pdf",
		fallback: "    *pdf = 0.0f;\n    return (float3)(0.0f);\n",
	}
)

// Emit a function that forwards to the generated function matching the
// configuration key stored in the material record.
func emitDispatch(buf *strings.Builder, d dispatch, fns []*Functions, name func(*Functions) string) {
	fmt.Fprintf(buf, "%s %s(%s)\n{\n", d.ret, d.name, d.params)
	buf.WriteString("    switch (material->uberv2.key)\n    {\n")
	for _, f := range fns {
		fmt.Fprintf(buf, "    case %s:\n", f.Config)
		if d.ret == "void" {
			fmt.Fprintf(buf, "        %s(%s);\n        return;\n", name(f), d.args)
		} else {
			fmt.Fprintf(buf, "        return %s(%s);\n", name(f), d.args)
		}
	}
	buf.WriteString("    }\n")
	if d.fallback != "" {
		buf.WriteString("\n" + d.fallback)
	}
	buf.WriteString("}\n\n")
}

// Format a float so that it is always parsed as a floating point literal.
func fmtFloat(f float32) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
