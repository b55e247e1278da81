package shadergen

import (
	"strings"
	"testing"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/config"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
)

func TestConfigKey(t *testing.T) {
	specs := []struct {
		layers scene.LayerMask
		mode   scene.ReflectionMode
		exp    Config
	}{
		{scene.DiffuseLayer, scene.ReflectionPBR, 0x10},
		{scene.DiffuseLayer, scene.ReflectionMetalness, 0x10},
		{scene.ReflectionLayer | scene.DiffuseLayer, scene.ReflectionMetalness, 0x118},
		{scene.ReflectionLayer | scene.DiffuseLayer, scene.ReflectionPBR, 0x18},
	}

	for idx, spec := range specs {
		if got := ConfigFor(spec.layers, spec.mode); got != spec.exp {
			t.Fatalf("[spec %d] expected key %s; got %s", idx, spec.exp, got)
		}
	}

	if got := Config(0x10).String(); got != "0x0010" {
		t.Fatalf("expected key to format as 0x0010; got %s", got)
	}
}

func TestDiffuseOnlyConfiguration(t *testing.T) {
	g := newGenerator(t)
	fns := g.Generate(ConfigFor(scene.DiffuseLayer, scene.ReflectionPBR))

	if fns.PrepareInputsName != "UberV2PrepareInputs_0x0010" {
		t.Fatalf("expected prepare function name to embed the key; got %s", fns.PrepareInputsName)
	}
	if got := strings.Count(fns.PrepareInputs, "GetInputMap"); got != 1 {
		t.Fatalf("expected a single input read; got %d in\n%s", got, fns.PrepareInputs)
	}
	if !strings.Contains(fns.PrepareInputs, "shader_data->diffuse_color = GetInputMapFloat4(material->uberv2.inputs[9]") {
		t.Fatalf("expected the diffuse color to be read from slot 9; got\n%s", fns.PrepareInputs)
	}

	for _, unexpected := range []string{"Fresnel", "Sampler_Sample1D", "if ("} {
		if strings.Contains(fns.GetBxDFType, unexpected) {
			t.Fatalf("expected diffuse selection without tests; found %q in\n%s", unexpected, fns.GetBxDFType)
		}
	}
	if !strings.Contains(fns.GetBxDFType, "kBxdfUberV2SampleDiffuse") {
		t.Fatalf("expected diffuse component to be selected; got\n%s", fns.GetBxDFType)
	}
	if !strings.Contains(fns.Sample, "UberV2_Lambert_Sample") || strings.Contains(fns.Sample, "UberV2_Reflection_Sample") {
		t.Fatalf("expected sampling to only dispatch to the diffuse sampler; got\n%s", fns.Sample)
	}
}

func TestTransparencyTestedBeforeDiffuse(t *testing.T) {
	g := newGenerator(t)
	fns := g.Generate(ConfigFor(scene.TransparencyLayer|scene.DiffuseLayer, scene.ReflectionPBR))
	src := fns.GetBxDFType

	testIdx := strings.Index(src, "Sampler_Sample1D(sampler, SAMPLER_ARGS) < shader_data->transparency")
	transparentIdx := strings.Index(src, "kBxdfUberV2SampleTransparency")
	diffuseIdx := strings.Index(src, "kBxdfUberV2SampleDiffuse")
	if testIdx == -1 || transparentIdx == -1 || diffuseIdx == -1 {
		t.Fatalf("expected transparency test and both components; got\n%s", src)
	}
	if !(testIdx < transparentIdx && transparentIdx < diffuseIdx) {
		t.Fatalf("expected transparency to be tested before diffuse; got\n%s", src)
	}
	if !strings.Contains(src[transparentIdx:diffuseIdx], "return bxdf_flags | kBxdfFlagsSingular | kBxdfFlagsTransparency;") {
		t.Fatalf("expected an early singular transparent return; got\n%s", src)
	}
	if strings.Contains(src, "Fresnel") {
		t.Fatalf("expected no Fresnel terms; got\n%s", src)
	}
}

func TestReflectionWorkflows(t *testing.T) {
	g := newGenerator(t)
	layers := scene.ReflectionLayer | scene.DiffuseLayer

	metal := g.Generate(ConfigFor(layers, scene.ReflectionMetalness))
	if !strings.Contains(metal.PrepareInputs, "reflection_metalness") || strings.Contains(metal.PrepareInputs, "reflection_ior") {
		t.Fatalf("expected metalness workflow to read metalness but not ior; got\n%s", metal.PrepareInputs)
	}
	if !strings.Contains(metal.GetBxDFType, "mix(CalculateFresnel(top_ior, 1.5f, ndotwi), 1.0f, shader_data->reflection_metalness)") {
		t.Fatalf("expected metalness weighted Fresnel; got\n%s", metal.GetBxDFType)
	}

	pbr := g.Generate(ConfigFor(layers, scene.ReflectionPBR))
	if !strings.Contains(pbr.PrepareInputs, "reflection_ior") || strings.Contains(pbr.PrepareInputs, "reflection_metalness") {
		t.Fatalf("expected pbr workflow to read ior but not metalness; got\n%s", pbr.PrepareInputs)
	}
	if !strings.Contains(pbr.GetBxDFType, "CalculateFresnel(top_ior, shader_data->reflection_ior, ndotwi)") {
		t.Fatalf("expected ior driven Fresnel; got\n%s", pbr.GetBxDFType)
	}
	if !strings.Contains(pbr.GetBxDFType, "shader_data->reflection_roughness < 0.001f") {
		t.Fatalf("expected roughness epsilon literal; got\n%s", pbr.GetBxDFType)
	}
}

func TestRefractionUsesCoatingIOR(t *testing.T) {
	g := newGenerator(t)

	coated := g.Generate(ConfigFor(scene.CoatingLayer|scene.RefractionLayer|scene.ReflectionLayer|scene.DiffuseLayer, scene.ReflectionPBR))
	if !strings.Contains(coated.GetBxDFType, "CalculateFresnel(shader_data->coating_ior, shader_data->refraction_ior, ndotwi)") {
		t.Fatalf("expected refraction to use the coating ior; got\n%s", coated.GetBxDFType)
	}
	if !strings.Contains(coated.GetBxDFType, "top_ior = shader_data->coating_ior;") {
		t.Fatalf("expected coating to update the top ior; got\n%s", coated.GetBxDFType)
	}
	refrIdx := strings.Index(coated.GetBxDFType, "kBxdfUberV2SampleRefraction")
	coatIdx := strings.Index(coated.GetBxDFType, "kBxdfUberV2SampleCoating")
	if refrIdx == -1 || coatIdx == -1 || refrIdx > coatIdx {
		t.Fatalf("expected refraction to be tested before coating; got\n%s", coated.GetBxDFType)
	}

	bare := g.Generate(ConfigFor(scene.RefractionLayer|scene.DiffuseLayer, scene.ReflectionPBR))
	if !strings.Contains(bare.GetBxDFType, "CalculateFresnel(1.0f, shader_data->refraction_ior, ndotwi)") {
		t.Fatalf("expected refraction against air without coating; got\n%s", bare.GetBxDFType)
	}
}

func TestGenerateCachesFunctions(t *testing.T) {
	g := newGenerator(t)

	key := ConfigFor(scene.DiffuseLayer|scene.EmissionLayer, scene.ReflectionPBR)
	if a, b := g.Generate(key), g.Generate(key); a != b {
		t.Fatal("expected repeated calls to return the same functions")
	}

	m := scene.NewUberMaterial(scene.DiffuseLayer | scene.CoatingLayer)
	fns, added := g.AddMaterial(m)
	if !added {
		t.Fatal("expected first material with a new configuration to generate functions")
	}
	again, added := g.AddMaterial(scene.NewUberMaterial(scene.DiffuseLayer | scene.CoatingLayer))
	if added || again != fns {
		t.Fatal("expected materials with the same configuration to share functions")
	}

	if got := len(g.Configs()); got != 2 {
		t.Fatalf("expected 2 configurations; got %d", got)
	}
	g.Reset()
	if got := len(g.Configs()); got != 0 {
		t.Fatalf("expected reset to drop all configurations; got %d", got)
	}
}

func TestAddMaterialResolvesDefaultMode(t *testing.T) {
	opts := config.Default().Shading
	opts.DefaultReflectionMode = config.ReflectionMetalness
	g := NewUberGenerator(opts)

	m := scene.NewUberMaterial(scene.ReflectionLayer | scene.DiffuseLayer)
	fns, _ := g.AddMaterial(m)
	if fns.Config&MetalnessBit == 0 {
		t.Fatalf("expected default metalness workflow; got key %s", fns.Config)
	}

	m.SetReflectionMode(scene.ReflectionPBR)
	if fns, _ = g.AddMaterial(m); fns.Config&MetalnessBit != 0 {
		t.Fatalf("expected material override to select the pbr workflow; got key %s", fns.Config)
	}
}

func TestAddMaterialRejectsNonUber(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected AddMaterial to panic for a single BxDF material")
		}
	}()

	newGenerator(t).AddMaterial(scene.NewSingleBxdfMaterial(scene.BxdfLambert))
}

func TestSourceIsDeterministic(t *testing.T) {
	keys := []Config{
		ConfigFor(scene.DiffuseLayer, scene.ReflectionPBR),
		ConfigFor(scene.TransparencyLayer|scene.DiffuseLayer, scene.ReflectionPBR),
		ConfigFor(scene.ReflectionLayer|scene.DiffuseLayer, scene.ReflectionMetalness),
		ConfigFor(scene.RefractionLayer|scene.CoatingLayer, scene.ReflectionPBR),
	}

	g1, g2 := newGenerator(t), newGenerator(t)
	for i := range keys {
		g1.Generate(keys[i])
		g2.Generate(keys[len(keys)-1-i])
	}

	src := g1.Source()
	if src != g2.Source() {
		t.Fatal("expected source to be independent of generation order")
	}
	if !strings.HasPrefix(src, "#ifndef UBERV2_CL") || !strings.HasSuffix(src, "#endif\n") {
		t.Fatal("expected source to be wrapped in include guards")
	}

	names := make(map[string]struct{})
	for _, key := range keys {
		fns := g1.Generate(key)
		for _, name := range []string{fns.PrepareInputsName, fns.GetBxDFTypeName, fns.SampleName} {
			if _, dup := names[name]; dup {
				t.Fatalf("duplicate function name %s", name)
			}
			names[name] = struct{}{}
			if strings.Count(src, name+"(") < 2 {
				t.Fatalf("expected %s to be defined and dispatched to", name)
			}
		}
		if !strings.Contains(src, "case "+key.String()+":") {
			t.Fatalf("expected dispatch case for key %s", key)
		}
	}
}

func newGenerator(t *testing.T) *UberGenerator {
	t.Helper()
	return NewUberGenerator(config.Default().Shading)
}
