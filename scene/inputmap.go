package scene

import (
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// Op identifies the operation performed by an input map node.
type Op uint8

// Leaf ops. Leaves are serialized into the input map data buffer.
const (
	OpConstantFloat3 Op = iota
	OpConstantFloat
	OpSampler
	OpSamplerBumpmap

	// Arithmetic and math ops evaluated on the device.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpSin
	OpCos
	OpTan
	OpSelect
	OpDot3
	OpCross3
	OpLength3
	OpNormalize3
	OpPow
	OpAcos
	OpAsin
	OpAtan
	OpLerp
	OpMin
	OpMax
	OpFloor
	OpMod
	OpAbs
	OpShuffle
	OpShuffle2
	OpDot4
	OpCross4
	OpMatMul
	OpRemap

	numOps
)

// InputMap is a node in an expression tree evaluated per shading point.
type InputMap struct {
	Object

	op   Op
	args []*InputMap

	// Constant value for constant leaves.
	value types.Vec4

	// Texture for sampler leaves.
	texture *Texture

	// Component index for OpSelect.
	component int

	// Component selectors for OpShuffle and OpShuffle2.
	mask [4]uint8

	// Matrix for OpMatMul.
	matrix types.Mat4
}

// Create an op node. It returns an error if the number of arguments does not
// match the op arity or an argument is nil.
func NewInputMap(op Op, args ...*InputMap) (*InputMap, error) {
	if op >= numOps {
		return nil, fmt.Errorf("input map: unknown op %d", op)
	}
	info := opTable[op]
	if info.leaf {
		return nil, fmt.Errorf("input map: %s is a leaf op; use the dedicated constructor", info.name)
	}
	if len(args) != info.arity {
		return nil, fmt.Errorf("input map: %s expects %d arguments; got %d", info.name, info.arity, len(args))
	}
	for i, arg := range args {
		if arg == nil {
			return nil, fmt.Errorf("input map: %s argument %d is nil", info.name, i)
		}
	}
	return &InputMap{op: op, args: append([]*InputMap(nil), args...)}, nil
}

func mustInputMap(op Op, args ...*InputMap) *InputMap {
	m, err := NewInputMap(op, args...)
	if err != nil {
		panic(err)
	}
	return m
}

// Create a float3 constant. The w component is set to zero.
func ConstantFloat3(v types.Vec3) *InputMap {
	return &InputMap{op: OpConstantFloat3, value: v.Vec4(0)}
}

// Create a scalar constant that is splatted across all components.
func ConstantFloat(f float32) *InputMap {
	return &InputMap{op: OpConstantFloat, value: types.Splat4(f)}
}

// Create a texture sampler leaf.
func Sampler(tex *Texture) *InputMap {
	return &InputMap{op: OpSampler, texture: tex}
}

// Create a bump map sampler leaf that returns the perturbed normal.
func SamplerBumpmap(tex *Texture) *InputMap {
	return &InputMap{op: OpSamplerBumpmap, texture: tex}
}

func Add(a, b *InputMap) *InputMap { return mustInputMap(OpAdd, a, b) }
func Sub(a, b *InputMap) *InputMap { return mustInputMap(OpSub, a, b) }
func Mul(a, b *InputMap) *InputMap { return mustInputMap(OpMul, a, b) }
func Div(a, b *InputMap) *InputMap { return mustInputMap(OpDiv, a, b) }
func Pow(a, b *InputMap) *InputMap { return mustInputMap(OpPow, a, b) }
func Min(a, b *InputMap) *InputMap { return mustInputMap(OpMin, a, b) }
func Max(a, b *InputMap) *InputMap { return mustInputMap(OpMax, a, b) }
func Mod(a, b *InputMap) *InputMap { return mustInputMap(OpMod, a, b) }
func Lerp(a, b, t *InputMap) *InputMap { return mustInputMap(OpLerp, a, b, t) }
func Dot3(a, b *InputMap) *InputMap { return mustInputMap(OpDot3, a, b) }
func Dot4(a, b *InputMap) *InputMap { return mustInputMap(OpDot4, a, b) }
func Cross3(a, b *InputMap) *InputMap { return mustInputMap(OpCross3, a, b) }
func Cross4(a, b *InputMap) *InputMap { return mustInputMap(OpCross4, a, b) }
func Length3(a *InputMap) *InputMap { return mustInputMap(OpLength3, a) }
func Normalize3(a *InputMap) *InputMap { return mustInputMap(OpNormalize3, a) }
func Sin(a *InputMap) *InputMap { return mustInputMap(OpSin, a) }
func Cos(a *InputMap) *InputMap { return mustInputMap(OpCos, a) }
func Tan(a *InputMap) *InputMap { return mustInputMap(OpTan, a) }
func Asin(a *InputMap) *InputMap { return mustInputMap(OpAsin, a) }
func Acos(a *InputMap) *InputMap { return mustInputMap(OpAcos, a) }
func Atan(a *InputMap) *InputMap { return mustInputMap(OpAtan, a) }
func Floor(a *InputMap) *InputMap { return mustInputMap(OpFloor, a) }
func Abs(a *InputMap) *InputMap { return mustInputMap(OpAbs, a) }
func Remap(src, dst, v *InputMap) *InputMap { return mustInputMap(OpRemap, src, dst, v) }

// Select a single component (0-3) and splat it across all components.
func Select(a *InputMap, component int) *InputMap {
	if component < 0 || component > 3 {
		panic(fmt.Sprintf("input map: select component %d out of range", component))
	}
	m := mustInputMap(OpSelect, a)
	m.component = component
	return m
}

// Rearrange the components of a. Each mask entry selects a component (0-3).
func Shuffle(a *InputMap, mask [4]uint8) *InputMap {
	for _, c := range mask {
		if c > 3 {
			panic(fmt.Sprintf("input map: shuffle selector %d out of range", c))
		}
	}
	m := mustInputMap(OpShuffle, a)
	m.mask = mask
	return m
}

// Build a vector from the components of a (0-3) and b (4-7).
func Shuffle2(a, b *InputMap, mask [4]uint8) *InputMap {
	for _, c := range mask {
		if c > 7 {
			panic(fmt.Sprintf("input map: shuffle2 selector %d out of range", c))
		}
	}
	m := mustInputMap(OpShuffle2, a, b)
	m.mask = mask
	return m
}

// Multiply a by a constant matrix.
func MatMul(a *InputMap, mat types.Mat4) *InputMap {
	m := mustInputMap(OpMatMul, a)
	m.matrix = mat
	return m
}

func (m *InputMap) Op() Op { return m.op }
func (m *InputMap) Args() []*InputMap { return m.args }
func (m *InputMap) Value() types.Vec4 { return m.value }
func (m *InputMap) Texture() *Texture { return m.texture }
func (m *InputMap) Component() int { return m.component }
func (m *InputMap) Mask() [4]uint8 { return m.mask }
func (m *InputMap) Matrix() types.Mat4 { return m.matrix }

// Check if this is a leaf node.
func (m *InputMap) IsLeaf() bool {
	return opTable[m.op].leaf
}

// Update the value of a constant leaf.
func (m *InputMap) SetValue(v types.Vec4) {
	if m.op != OpConstantFloat3 && m.op != OpConstantFloat {
		panic(fmt.Sprintf("input map: cannot set the value of a %s node", opTable[m.op].name))
	}
	if m.op == OpConstantFloat {
		v = types.Splat4(v[0])
	}
	m.value = v
	m.SetDirty()
}

// Update the texture of a sampler leaf.
func (m *InputMap) SetTexture(tex *Texture) {
	if m.op != OpSampler && m.op != OpSamplerBumpmap {
		panic(fmt.Sprintf("input map: cannot set the texture of a %s node", opTable[m.op].name))
	}
	m.texture = tex
	m.SetDirty()
}

// Replace an argument of an op node.
func (m *InputMap) SetArg(index int, arg *InputMap) error {
	if index < 0 || index >= len(m.args) {
		return fmt.Errorf("input map: %s has no argument %d", opTable[m.op].name, index)
	}
	if arg == nil {
		return fmt.Errorf("input map: %s argument %d is nil", opTable[m.op].name, index)
	}
	m.args[index] = arg
	m.SetDirty()
	return nil
}

// Visit the node and all its descendants in depth-first pre-order.
func (m *InputMap) Walk(fn func(*InputMap)) {
	fn(m)
	for _, arg := range m.args {
		arg.Walk(fn)
	}
}

// Collect the textures referenced by sampler leaves of the tree.
func (m *InputMap) Textures() []*Texture {
	var out []*Texture
	m.Walk(func(n *InputMap) {
		if n.texture != nil {
			out = append(out, n.texture)
		}
	})
	return out
}

// Evaluate the tree on the host. Sampler leaves are resolved through the
// supplied callback; a nil callback evaluates samplers to zero.
func (m *InputMap) Eval(sample func(tex *Texture, bump bool) types.Vec4) types.Vec4 {
	info := opTable[m.op]
	if info.leaf {
		switch m.op {
		case OpSampler, OpSamplerBumpmap:
			if sample == nil || m.texture == nil {
				return types.Vec4{}
			}
			return sample(m.texture, m.op == OpSamplerBumpmap)
		default:
			return m.value
		}
	}

	args := make([]types.Vec4, len(m.args))
	for i, arg := range m.args {
		args[i] = arg.Eval(sample)
	}
	return info.eval(m, args)
}

// Get the name of an op.
func (op Op) String() string {
	if op >= numOps {
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
	return opTable[op].name
}

// Get the number of arguments an op expects.
func (op Op) Arity() int {
	return opTable[op].arity
}

// Emit device source for an op node given the source expressions of its
// evaluated arguments.
func (m *InputMap) Emit(args []string) string {
	info := opTable[m.op]
	if info.leaf {
		panic(fmt.Sprintf("input map: leaf op %s cannot be emitted as an expression", info.name))
	}
	if len(args) != info.arity {
		panic(fmt.Sprintf("input map: %s expects %d arguments; got %d", info.name, info.arity, len(args)))
	}
	return info.emit(m, args)
}
