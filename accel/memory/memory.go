// Package memory provides an intersector that keeps track of shapes and their
// attachment state without building acceleration structures. It backs CPU
// runs of the scene compiler and the compiler tests.
package memory

import (
	"fmt"
	"sync"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/accel"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// Shape is a mesh or instance tracked by the intersector.
type Shape struct {
	owner *Intersector

	// Base is non-nil for instances.
	Base *Shape

	NumVertices int
	NumFaces    int

	Transform    types.Mat4
	InvTransform types.Mat4
	ID           int
	Mask         uint32

	deleted bool
}

func (s *Shape) SetTransform(m, inv types.Mat4) {
	s.Transform = m
	s.InvTransform = inv
}

func (s *Shape) SetID(id int) {
	s.ID = id
}

func (s *Shape) SetMask(mask uint32) {
	s.Mask = mask
}

// Check if the shape has been deleted.
func (s *Shape) Deleted() bool {
	return s.deleted
}

// Counters for intersector operations.
type Stats struct {
	MeshesCreated    int
	InstancesCreated int
	Deleted          int
	Commits          int
}

// Intersector is an in-memory accel.Intersector.
type Intersector struct {
	mu sync.Mutex

	shapes   []*Shape
	attached []*Shape
	options  map[string]interface{}
	stats    Stats

	// Committed holds the attached set at the time of the last Commit.
	committed []*Shape
}

// Create a new intersector.
func New() *Intersector {
	return &Intersector{
		options: make(map[string]interface{}),
	}
}

func (in *Intersector) CreateMesh(vertices []types.Vec3, indices []uint32, numFaces int) (accel.Shape, error) {
	if numFaces*3 > len(indices) {
		return nil, fmt.Errorf("memory intersector: %d faces require %d indices; got %d", numFaces, numFaces*3, len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("memory intersector: vertex index %d out of range [0, %d)", idx, len(vertices))
		}
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	s := &Shape{
		owner:        in,
		NumVertices:  len(vertices),
		NumFaces:     numFaces,
		Transform:    types.Ident4(),
		InvTransform: types.Ident4(),
		Mask:         0xFFFFFFFF,
	}
	in.shapes = append(in.shapes, s)
	in.stats.MeshesCreated++
	return s, nil
}

func (in *Intersector) CreateInstance(base accel.Shape) (accel.Shape, error) {
	b, err := in.own(base)
	if err != nil {
		return nil, err
	}
	if b.Base != nil {
		return nil, fmt.Errorf("memory intersector: cannot instance another instance")
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	s := &Shape{
		owner:        in,
		Base:         b,
		Transform:    types.Ident4(),
		InvTransform: types.Ident4(),
		Mask:         0xFFFFFFFF,
	}
	in.shapes = append(in.shapes, s)
	in.stats.InstancesCreated++
	return s, nil
}

func (in *Intersector) AttachShape(shape accel.Shape) {
	s, err := in.own(shape)
	if err != nil || s.deleted {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	for _, a := range in.attached {
		if a == s {
			return
		}
	}
	in.attached = append(in.attached, s)
}

func (in *Intersector) DetachShape(shape accel.Shape) {
	s, err := in.own(shape)
	if err != nil {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.detach(s)
}

func (in *Intersector) DeleteShape(shape accel.Shape) {
	s, err := in.own(shape)
	if err != nil || s.deleted {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	in.detach(s)
	s.deleted = true
	for i, cand := range in.shapes {
		if cand == s {
			in.shapes = append(in.shapes[:i], in.shapes[i+1:]...)
			break
		}
	}
	in.stats.Deleted++
}

func (in *Intersector) DetachAll() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.attached = in.attached[:0]
}

func (in *Intersector) Commit() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	for _, s := range in.attached {
		if s.Base != nil && s.Base.deleted {
			return fmt.Errorf("memory intersector: instance %d references a deleted base shape", s.ID)
		}
	}
	in.committed = append(in.committed[:0], in.attached...)
	in.stats.Commits++
	return nil
}

func (in *Intersector) SetOption(name string, value interface{}) error {
	switch value.(type) {
	case string, float32:
	default:
		return fmt.Errorf("memory intersector: unsupported value type %T for option %q", value, name)
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.options[name] = value
	return nil
}

// Get the value of an option.
func (in *Intersector) Option(name string) interface{} {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.options[name]
}

// Get the shapes that were attached when Commit was last called.
func (in *Intersector) Committed() []*Shape {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]*Shape, len(in.committed))
	copy(out, in.committed)
	return out
}

// Get the number of live (non-deleted) shapes.
func (in *Intersector) LiveShapes() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.shapes)
}

// Get operation counters.
func (in *Intersector) Stats() Stats {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stats
}

func (in *Intersector) detach(s *Shape) {
	for i, a := range in.attached {
		if a == s {
			in.attached = append(in.attached[:i], in.attached[i+1:]...)
			return
		}
	}
}

func (in *Intersector) own(shape accel.Shape) (*Shape, error) {
	s, ok := shape.(*Shape)
	if !ok || s == nil || s.owner != in {
		return nil, fmt.Errorf("memory intersector: shape does not belong to this intersector")
	}
	return s, nil
}
