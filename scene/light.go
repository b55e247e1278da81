package scene

import (
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
	"github.com/chewxy/math32"
)

type LightKind uint8

const (
	PointLight LightKind = iota
	DirectionalLight
	SpotLight
	AreaLight
	ImageBasedLight
)

func (k LightKind) String() string {
	switch k {
	case PointLight:
		return "point"
	case DirectionalLight:
		return "directional"
	case SpotLight:
		return "spot"
	case AreaLight:
		return "area"
	case ImageBasedLight:
		return "ibl"
	}
	return fmt.Sprintf("LightKind(%d)", uint8(k))
}

// Light is a closed variant over the supported light kinds.
type Light struct {
	Object

	kind LightKind

	position  types.Vec3
	direction types.Vec3
	radiance  types.Vec3

	// Spot light cone as the cosines of the inner and outer angles.
	cone types.Vec2

	// Area light emitting primitive.
	shape     Shape
	primitive int

	// Image based light textures.
	texture             *Texture
	reflectionTexture   *Texture
	refractionTexture   *Texture
	transparencyTexture *Texture
	backgroundTexture   *Texture
	multiplier          float32
}

func NewPointLight(position, radiance types.Vec3) *Light {
	return &Light{kind: PointLight, position: position, radiance: radiance}
}

func NewDirectionalLight(direction, radiance types.Vec3) *Light {
	return &Light{kind: DirectionalLight, direction: direction.Normalize(), radiance: radiance}
}

// Create a spot light. The cone is specified as the cosines of the inner and
// outer cone angles.
func NewSpotLight(position, direction, radiance types.Vec3, cosInner, cosOuter float32) *Light {
	return &Light{
		kind:      SpotLight,
		position:  position,
		direction: direction.Normalize(),
		radiance:  radiance,
		cone:      types.XY(cosInner, cosOuter),
	}
}

// Create an area light for one triangle of a shape.
func NewAreaLight(shape Shape, primitive int, radiance types.Vec3) *Light {
	return &Light{kind: AreaLight, shape: shape, primitive: primitive, radiance: radiance}
}

// Create an image based light. The additional textures override what the
// environment looks like in reflections, refractions, through transparent
// surfaces and as the visible background; nil falls back to the main texture.
func NewImageBasedLight(tex *Texture, multiplier float32) *Light {
	return &Light{kind: ImageBasedLight, texture: tex, multiplier: multiplier}
}

func (l *Light) Kind() LightKind { return l.kind }
func (l *Light) Position() types.Vec3 { return l.position }
func (l *Light) Direction() types.Vec3 { return l.direction }
func (l *Light) Radiance() types.Vec3 { return l.radiance }
func (l *Light) Cone() types.Vec2 { return l.cone }
func (l *Light) Shape() Shape { return l.shape }
func (l *Light) Primitive() int { return l.primitive }
func (l *Light) Texture() *Texture { return l.texture }
func (l *Light) ReflectionTexture() *Texture { return l.reflectionTexture }
func (l *Light) RefractionTexture() *Texture { return l.refractionTexture }
func (l *Light) TransparencyTexture() *Texture { return l.transparencyTexture }
func (l *Light) BackgroundTexture() *Texture { return l.backgroundTexture }
func (l *Light) Multiplier() float32 { return l.multiplier }

func (l *Light) SetPosition(p types.Vec3) {
	l.position = p
	l.SetDirty()
}

func (l *Light) SetDirection(d types.Vec3) {
	l.direction = d.Normalize()
	l.SetDirty()
}

func (l *Light) SetRadiance(e types.Vec3) {
	l.radiance = e
	l.SetDirty()
}

func (l *Light) SetCone(cosInner, cosOuter float32) {
	l.cone = types.XY(cosInner, cosOuter)
	l.SetDirty()
}

func (l *Light) SetTexture(tex *Texture) {
	l.texture = tex
	l.SetDirty()
}

func (l *Light) SetReflectionTexture(tex *Texture) {
	l.reflectionTexture = tex
	l.SetDirty()
}

func (l *Light) SetRefractionTexture(tex *Texture) {
	l.refractionTexture = tex
	l.SetDirty()
}

func (l *Light) SetTransparencyTexture(tex *Texture) {
	l.transparencyTexture = tex
	l.SetDirty()
}

func (l *Light) SetBackgroundTexture(tex *Texture) {
	l.backgroundTexture = tex
	l.SetDirty()
}

func (l *Light) SetMultiplier(m float32) {
	l.multiplier = m
	l.SetDirty()
}

// Get the textures referenced by the light.
func (l *Light) Textures() []*Texture {
	var out []*Texture
	for _, tex := range []*Texture{l.texture, l.reflectionTexture, l.refractionTexture, l.transparencyTexture, l.backgroundTexture} {
		if tex != nil {
			out = append(out, tex)
		}
	}
	return out
}

// Estimate the power emitted by the light. Lights with unbounded extent are
// scaled by the area of a disk with the scene bounding sphere radius.
func (l *Light) Power(sceneRadius float32) types.Vec3 {
	switch l.kind {
	case PointLight:
		return l.radiance.Mul(4 * math32.Pi)
	case SpotLight:
		return l.radiance.Mul(2 * math32.Pi * (1 - 0.5*(l.cone[0]+l.cone[1])))
	case DirectionalLight:
		return l.radiance.Mul(math32.Pi * sceneRadius * sceneRadius)
	case ImageBasedLight:
		if l.texture == nil {
			return types.Vec3{}
		}
		return l.texture.Average().Vec3().Mul(math32.Pi * sceneRadius * sceneRadius)
	case AreaLight:
		return l.radiance.Mul(math32.Pi * l.primitiveArea())
	}
	return types.Vec3{}
}

// Get the world space area of the emitting triangle.
func (l *Light) primitiveArea() float32 {
	if l.shape == nil {
		return 0
	}
	mesh := l.shape.Geometry()
	if mesh == nil {
		return 0
	}

	idx := mesh.Indices()
	verts := mesh.Vertices()
	if l.primitive < 0 || (l.primitive+1)*3 > len(idx) {
		return 0
	}

	xform := l.shape.Transform()
	v0 := xform.TransformPoint(verts[idx[l.primitive*3]])
	v1 := xform.TransformPoint(verts[idx[l.primitive*3+1]])
	v2 := xform.TransformPoint(verts[idx[l.primitive*3+2]])
	return 0.5 * v1.Sub(v0).Cross(v2.Sub(v0)).Len()
}
