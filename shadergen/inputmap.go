package shadergen

import (
	"fmt"
	"strings"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/collector"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
)

// The name of the program header that receives the generated input maps.
const InputMapHeader = "inputmaps.cl"

const readInputMapParams = "DifferentialGeometry const* dg, GLOBAL InputMapData const* restrict input_map_values, TEXTURE_ARG_LIST"

// InputMapGenerator emits one device function per collected input map.
type InputMapGenerator struct{}

// Generate the input map header. Maps are emitted in collector index order
// and leaves are read from the input map data buffer using their collector
// index. It panics if a map references a leaf that was not collected.
func (InputMapGenerator) Generate(maps, leaves *collector.Collector[*scene.InputMap]) string {
	var buf strings.Builder
	buf.WriteString("#ifndef INPUTMAPS_CL\n#define INPUTMAPS_CL\n\n")

	for idx, m := range maps.All() {
		fmt.Fprintf(&buf, "float4 ReadInputMap%d(%s)\n{\n", idx, readInputMapParams)
		fmt.Fprintf(&buf, "    return %s;\n}\n\n", emitExpr(m, leaves))
	}

	emitSelector(&buf, "float4", "GetInputMapFloat4", "", maps)
	emitSelector(&buf, "float", "GetInputMapFloat", ".x", maps)

	buf.WriteString("#endif\n")
	return buf.String()
}

func emitSelector(buf *strings.Builder, ret, name, swizzle string, maps *collector.Collector[*scene.InputMap]) {
	fmt.Fprintf(buf, "%s %s(uint input_id, %s)\n{\n", ret, name, readInputMapParams)
	buf.WriteString("    switch (input_id)\n    {\n")
	for idx := range maps.All() {
		fmt.Fprintf(buf, "    case %d:\n        return ReadInputMap%d(dg, input_map_values, TEXTURE_ARGS)%s;\n", idx, idx, swizzle)
	}
	buf.WriteString("    }\n\n    return 0.0f;\n}\n\n")
}

func emitExpr(m *scene.InputMap, leaves *collector.Collector[*scene.InputMap]) string {
	if !m.IsLeaf() {
		args := make([]string, len(m.Args()))
		for i, arg := range m.Args() {
			args[i] = emitExpr(arg, leaves)
		}
		return m.Emit(args)
	}

	idx, ok := leaves.Index(m)
	if !ok {
		panic(fmt.Sprintf("input map generator: leaf %s (id %d) was not collected", m.Op(), m.ID()))
	}

	switch m.Op() {
	case scene.OpConstantFloat3:
		return fmt.Sprintf("(float4)(input_map_values[%d].float_value.value, 0.0f)", idx)
	case scene.OpConstantFloat:
		return fmt.Sprintf("(float4)(input_map_values[%d].float_value.value.x)", idx)
	case scene.OpSampler:
		return fmt.Sprintf("Texture_Sample2D(dg->uv, TEXTURE_ARGS_IDX(input_map_values[%d].int_values.idx))", idx)
	case scene.OpSamplerBumpmap:
		return fmt.Sprintf("(float4)(Texture_SampleBump(dg->uv, TEXTURE_ARGS_IDX(input_map_values[%d].int_values.idx)), 0.0f)", idx)
	}
	panic(fmt.Sprintf("input map generator: unsupported leaf op %s", m.Op()))
}
