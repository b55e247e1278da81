package scene

import (
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// Shape is implemented by *Mesh and *Instance.
type Shape interface {
	Dirtiable

	Material() *Material
	SetMaterial(m *Material)
	Volume() *Volume
	SetVolume(v *Volume)
	Transform() types.Mat4
	SetTransform(m types.Mat4)

	// Ray visibility mask.
	Mask() uint32
	SetMask(mask uint32)

	// Get the mesh providing the shape geometry. For instances this is the
	// base mesh; it is nil if the base is not a mesh.
	Geometry() *Mesh

	// Check if the geometry or the instance base changed since the controller
	// last cleared it. Such changes require rebuilding acceleration structures.
	GeometryDirty(c ControllerID) bool
	ClearGeometryDirty(c ControllerID)

	isShape()
}

type shapeBase struct {
	Object

	Name string

	material  *Material
	volume    *Volume
	transform types.Mat4
	mask      uint32

	// A set bit means the geometry is clean for that controller.
	geometryClean uint64
}

func (s *shapeBase) init() {
	s.transform = types.Ident4()
	s.mask = 0xFFFFFFFF
}

func (s *shapeBase) GeometryDirty(c ControllerID) bool {
	return s.geometryClean&c.bit() == 0
}

func (s *shapeBase) ClearGeometryDirty(c ControllerID) {
	s.geometryClean |= c.bit()
}

func (s *shapeBase) Material() *Material { return s.material }
func (s *shapeBase) Volume() *Volume { return s.volume }
func (s *shapeBase) Transform() types.Mat4 { return s.transform }
func (s *shapeBase) Mask() uint32 { return s.mask }
func (s *shapeBase) isShape() {}

func (s *shapeBase) SetMaterial(m *Material) {
	s.material = m
	s.SetDirty()
}

func (s *shapeBase) SetVolume(v *Volume) {
	s.volume = v
	s.SetDirty()
}

func (s *shapeBase) SetTransform(m types.Mat4) {
	s.transform = m
	s.SetDirty()
}

func (s *shapeBase) SetMask(mask uint32) {
	s.mask = mask
	s.SetDirty()
}

// Mesh is a triangle mesh. Normals and uvs are optional; missing attributes
// are uploaded as zeros.
type Mesh struct {
	shapeBase

	vertices []types.Vec3
	normals  []types.Vec3
	uvs      []types.Vec2
	indices  []uint32
}

// Create a mesh from indexed triangles.
func NewMesh(vertices, normals []types.Vec3, uvs []types.Vec2, indices []uint32) (*Mesh, error) {
	m := &Mesh{}
	m.init()
	if err := m.SetGeometry(vertices, normals, uvs, indices); err != nil {
		return nil, err
	}
	return m, nil
}

// Replace mesh geometry.
func (m *Mesh) SetGeometry(vertices, normals []types.Vec3, uvs []types.Vec2, indices []uint32) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("mesh %q: index count %d is not a multiple of 3", m.Name, len(indices))
	}
	if len(normals) != 0 && len(normals) != len(vertices) {
		return fmt.Errorf("mesh %q: expected %d normals; got %d", m.Name, len(vertices), len(normals))
	}
	if len(uvs) != 0 && len(uvs) != len(vertices) {
		return fmt.Errorf("mesh %q: expected %d uvs; got %d", m.Name, len(vertices), len(uvs))
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return fmt.Errorf("mesh %q: index %d out of range [0, %d)", m.Name, idx, len(vertices))
		}
	}

	m.vertices = vertices
	m.normals = normals
	m.uvs = uvs
	m.indices = indices
	m.geometryClean = 0
	m.SetDirty()
	return nil
}

func (m *Mesh) Vertices() []types.Vec3 { return m.vertices }
func (m *Mesh) Normals() []types.Vec3 { return m.normals }
func (m *Mesh) UVs() []types.Vec2 { return m.uvs }
func (m *Mesh) Indices() []uint32 { return m.indices }
func (m *Mesh) NumFaces() int { return len(m.indices) / 3 }
func (m *Mesh) Geometry() *Mesh { return m }

// Instance re-uses the geometry of a base mesh with its own transform,
// material and volume.
type Instance struct {
	shapeBase

	base Shape
}

func NewInstance(base Shape) *Instance {
	i := &Instance{base: base}
	i.init()
	return i
}

func (i *Instance) Base() Shape {
	return i.base
}

func (i *Instance) SetBase(base Shape) {
	i.base = base
	i.geometryClean = 0
	i.SetDirty()
}

func (i *Instance) Geometry() *Mesh {
	if mesh, ok := i.base.(*Mesh); ok {
		return mesh
	}
	return nil
}
