package shadergen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/config"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/log"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
)

// The name of the program header that receives the generated uber functions.
const UberHeader = "uberv2.cl"

// Functions holds the generated source for one uber configuration.
type Functions struct {
	Config Config

	PrepareInputsName string
	GetBxDFTypeName   string
	SampleName        string

	PrepareInputs string
	GetBxDFType   string
	Sample        string
}

// Get the concatenated source of all functions.
func (f *Functions) Source() string {
	return f.PrepareInputs + "\n" + f.GetBxDFType + "\n" + f.Sample
}

// UberGenerator emits uber material functions for each distinct
// configuration it encounters. Generated functions are cached until Reset
// is called.
type UberGenerator struct {
	logger log.Logger

	roughnessEpsilon float32
	defaultMode      scene.ReflectionMode

	cache map[Config]*Functions
}

// Create a generator using the shading options.
func NewUberGenerator(opts config.ShadingOptions) *UberGenerator {
	mode := scene.ReflectionPBR
	if opts.DefaultReflectionMode == config.ReflectionMetalness {
		mode = scene.ReflectionMetalness
	}
	return &UberGenerator{
		logger:           log.New("uber generator"),
		roughnessEpsilon: opts.RoughnessEpsilon,
		defaultMode:      mode,
		cache:            make(map[Config]*Functions),
	}
}

// Resolve the reflection mode of a material, replacing the default mode with
// the configured workflow.
func (g *UberGenerator) ResolveMode(m *scene.Material) scene.ReflectionMode {
	if mode := m.ReflectionMode(); mode != scene.ReflectionDefault {
		return mode
	}
	return g.defaultMode
}

// Get the configuration key of an uber material.
func (g *UberGenerator) ConfigOf(m *scene.Material) Config {
	return ConfigFor(m.Layers(), g.ResolveMode(m))
}

// Register an uber material. It returns the functions for the material
// configuration and true if they were generated by this call.
func (g *UberGenerator) AddMaterial(m *scene.Material) (*Functions, bool) {
	if m.Kind() != scene.UberMaterial {
		panic(fmt.Sprintf("uber generator: material %q is not an uber material", m.Name))
	}
	key := g.ConfigOf(m)
	if fns, exists := g.cache[key]; exists {
		return fns, false
	}
	return g.Generate(key), true
}

// Get the functions for a configuration, generating them on the first
// request.
func (g *UberGenerator) Generate(key Config) *Functions {
	if fns, exists := g.cache[key]; exists {
		return fns
	}

	fns := &Functions{
		Config:            key,
		PrepareInputsName: "UberV2PrepareInputs_" + key.String(),
		GetBxDFTypeName:   "UberV2GetBxDFType_" + key.String(),
		SampleName:        "UberV2Sample_" + key.String(),
	}
	fns.PrepareInputs = g.emitPrepareInputs(fns)
	fns.GetBxDFType = g.emitGetBxDFType(fns)
	fns.Sample = g.emitSample(fns)

	g.cache[key] = fns
	g.logger.Debugf("generated functions for configuration %s [%s]", key, key.describe())
	return fns
}

// Get the generated configurations in ascending key order.
func (g *UberGenerator) Configs() []Config {
	keys := make([]Config, 0, len(g.cache))
	for key := range g.cache {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Start a new program build session. All cached functions are dropped.
func (g *UberGenerator) Reset() {
	g.cache = make(map[Config]*Functions)
}

// Assemble the program header with the shader data definition, the functions
// of every generated configuration and the dispatch functions selecting
// between them. The output only depends on the set of configurations.
func (g *UberGenerator) Source() string {
	var buf strings.Builder
	buf.WriteString("#ifndef UBERV2_CL\n#define UBERV2_CL\n\n")
	emitShaderData(&buf)

	keys := g.Configs()
	fns := make([]*Functions, 0, len(keys))
	for _, key := range keys {
		fns = append(fns, g.cache[key])
		buf.WriteString(g.cache[key].Source())
		buf.WriteString("\n")
	}

	emitDispatch(&buf, prepareInputsDispatch, fns, func(f *Functions) string { return f.PrepareInputsName })
	emitDispatch(&buf, getBxDFTypeDispatch, fns, func(f *Functions) string { return f.GetBxDFTypeName })
	emitDispatch(&buf, sampleDispatch, fns, func(f *Functions) string { return f.SampleName })

	buf.WriteString("#endif\n")
	return buf.String()
}
