package scene

import (
	"fmt"
	"strings"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
	"github.com/chewxy/math32"
)

// Describes an input map op: its arity, how it is emitted as OpenCL C and
// how it is evaluated on the host. Arguments are always float4 values.
type opInfo struct {
	name  string
	arity int
	leaf  bool
	emit  func(m *InputMap, args []string) string
	eval  func(m *InputMap, args []types.Vec4) types.Vec4
}

var opTable = [numOps]opInfo{
	OpConstantFloat3: {name: "ConstantFloat3", leaf: true},
	OpConstantFloat:  {name: "ConstantFloat", leaf: true},
	OpSampler:        {name: "Sampler", leaf: true},
	OpSamplerBumpmap: {name: "SamplerBumpmap", leaf: true},

	OpAdd:   binaryOp("Add", infix("+"), func(a, b float32) float32 { return a + b }),
	OpSub:   binaryOp("Sub", infix("-"), func(a, b float32) float32 { return a - b }),
	OpMul:   binaryOp("Mul", infix("*"), func(a, b float32) float32 { return a * b }),
	OpDiv:   binaryOp("Div", infix("/"), func(a, b float32) float32 { return a / b }),
	OpPow:   binaryOp("Pow", call("pow"), math32.Pow),
	OpMin:   binaryOp("Min", call("min"), math32.Min),
	OpMax:   binaryOp("Max", call("max"), math32.Max),
	OpMod:   binaryOp("Mod", call("fmod"), math32.Mod),
	OpSin:   unaryOp("Sin", "sin", math32.Sin),
	OpCos:   unaryOp("Cos", "cos", math32.Cos),
	OpTan:   unaryOp("Tan", "tan", math32.Tan),
	OpAsin:  unaryOp("Asin", "asin", math32.Asin),
	OpAcos:  unaryOp("Acos", "acos", math32.Acos),
	OpAtan:  unaryOp("Atan", "atan", math32.Atan),
	OpFloor: unaryOp("Floor", "floor", math32.Floor),
	OpAbs:   unaryOp("Abs", "fabs", math32.Abs),

	OpSelect: {
		name:  "Select",
		arity: 1,
		emit: func(m *InputMap, args []string) string {
			return fmt.Sprintf("(float4)((%s).%c)", args[0], "xyzw"[m.component])
		},
		eval: func(m *InputMap, args []types.Vec4) types.Vec4 {
			return types.Splat4(args[0][m.component])
		},
	},
	OpDot3: {
		name:  "Dot3",
		arity: 2,
		emit: func(_ *InputMap, args []string) string {
			return fmt.Sprintf("(float4)(dot((%s).xyz, (%s).xyz))", args[0], args[1])
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			return types.Splat4(args[0].Vec3().Dot(args[1].Vec3()))
		},
	},
	OpDot4: {
		name:  "Dot4",
		arity: 2,
		emit: func(_ *InputMap, args []string) string {
			return fmt.Sprintf("(float4)(dot(%s, %s))", args[0], args[1])
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			return types.Splat4(args[0].Dot(args[1]))
		},
	},
	OpCross3: {
		name:  "Cross3",
		arity: 2,
		emit: func(_ *InputMap, args []string) string {
			return fmt.Sprintf("(float4)(cross((%s).xyz, (%s).xyz), 0.0f)", args[0], args[1])
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			return args[0].Vec3().Cross(args[1].Vec3()).Vec4(0)
		},
	},
	// OpenCL cross on float4 operands ignores w and returns w = 0.
	OpCross4: {
		name:  "Cross4",
		arity: 2,
		emit: func(_ *InputMap, args []string) string {
			return fmt.Sprintf("cross(%s, %s)", args[0], args[1])
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			return args[0].Vec3().Cross(args[1].Vec3()).Vec4(0)
		},
	},
	OpLength3: {
		name:  "Length3",
		arity: 1,
		emit: func(_ *InputMap, args []string) string {
			return fmt.Sprintf("(float4)(length((%s).xyz))", args[0])
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			return types.Splat4(args[0].Vec3().Len())
		},
	},
	OpNormalize3: {
		name:  "Normalize3",
		arity: 1,
		emit: func(_ *InputMap, args []string) string {
			return fmt.Sprintf("(float4)(normalize((%s).xyz), 0.0f)", args[0])
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			return args[0].Vec3().Normalize().Vec4(0)
		},
	},
	OpLerp: {
		name:  "Lerp",
		arity: 3,
		emit: func(_ *InputMap, args []string) string {
			return fmt.Sprintf("mix(%s, %s, %s)", args[0], args[1], args[2])
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			var out types.Vec4
			for c := 0; c < 4; c++ {
				out[c] = args[0][c] + (args[1][c]-args[0][c])*args[2][c]
			}
			return out
		},
	},
	OpShuffle: {
		name:  "Shuffle",
		arity: 1,
		emit: func(m *InputMap, args []string) string {
			return fmt.Sprintf("shuffle(%s, (uint4)(%d, %d, %d, %d))", args[0], m.mask[0], m.mask[1], m.mask[2], m.mask[3])
		},
		eval: func(m *InputMap, args []types.Vec4) types.Vec4 {
			var out types.Vec4
			for c, sel := range m.mask {
				out[c] = args[0][sel]
			}
			return out
		},
	},
	OpShuffle2: {
		name:  "Shuffle2",
		arity: 2,
		emit: func(m *InputMap, args []string) string {
			return fmt.Sprintf("shuffle2(%s, %s, (uint4)(%d, %d, %d, %d))", args[0], args[1], m.mask[0], m.mask[1], m.mask[2], m.mask[3])
		},
		eval: func(m *InputMap, args []types.Vec4) types.Vec4 {
			var out types.Vec4
			for c, sel := range m.mask {
				if sel < 4 {
					out[c] = args[0][sel]
				} else {
					out[c] = args[1][sel-4]
				}
			}
			return out
		},
	},
	OpMatMul: {
		name:  "MatMul",
		arity: 1,
		emit: func(m *InputMap, args []string) string {
			rows := m.matrix.Rows()
			parts := make([]string, 4)
			for r, row := range rows {
				parts[r] = fmt.Sprintf("dot(%s, %s)", float4Literal(row), args[0])
			}
			return fmt.Sprintf("(float4)(%s)", strings.Join(parts, ", "))
		},
		eval: func(m *InputMap, args []types.Vec4) types.Vec4 {
			return m.matrix.Mul4x1(args[0])
		},
	},
	// Remap value from the [src.x, src.y] range to [dst.x, dst.y].
	OpRemap: {
		name:  "Remap",
		arity: 3,
		emit: func(_ *InputMap, args []string) string {
			src, dst, v := args[0], args[1], args[2]
			return fmt.Sprintf(
				"mix((float4)((%[2]s).x), (float4)((%[2]s).y), ((%[3]s) - (float4)((%[1]s).x)) / (float4)((%[1]s).y - (%[1]s).x))",
				src, dst, v,
			)
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			src, dst, v := args[0], args[1], args[2]
			var out types.Vec4
			for c := 0; c < 4; c++ {
				t := (v[c] - src[0]) / (src[1] - src[0])
				out[c] = dst[0] + (dst[1]-dst[0])*t
			}
			return out
		},
	},
}

func unaryOp(name, fn string, f func(float32) float32) opInfo {
	return opInfo{
		name:  name,
		arity: 1,
		emit: func(_ *InputMap, args []string) string {
			return fmt.Sprintf("%s(%s)", fn, args[0])
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			var out types.Vec4
			for c := 0; c < 4; c++ {
				out[c] = f(args[0][c])
			}
			return out
		},
	}
}

func binaryOp(name string, emit func(a, b string) string, f func(a, b float32) float32) opInfo {
	return opInfo{
		name:  name,
		arity: 2,
		emit: func(_ *InputMap, args []string) string {
			return emit(args[0], args[1])
		},
		eval: func(_ *InputMap, args []types.Vec4) types.Vec4 {
			var out types.Vec4
			for c := 0; c < 4; c++ {
				out[c] = f(args[0][c], args[1][c])
			}
			return out
		},
	}
}

func infix(op string) func(a, b string) string {
	return func(a, b string) string {
		return fmt.Sprintf("(%s %s %s)", a, op, b)
	}
}

func call(fn string) func(a, b string) string {
	return func(a, b string) string {
		return fmt.Sprintf("%s(%s, %s)", fn, a, b)
	}
}

func float4Literal(v types.Vec4) string {
	return fmt.Sprintf("(float4)(%sf, %sf, %sf, %sf)", fmtFloat(v[0]), fmtFloat(v[1]), fmtFloat(v[2]), fmtFloat(v[3]))
}

// Format a float so that it is always parsed as a floating point literal.
func fmtFloat(f float32) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
