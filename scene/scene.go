// Package scene contains the CPU-side scene graph that the scene compiler
// converts into device buffers.
package scene

import (
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// DirtyFlag marks structural scene changes.
type DirtyFlag uint32

const (
	DirtyShapes DirtyFlag = 1 << iota
	DirtyLights
	DirtyCamera
	DirtyBackground

	numDirtyFlags = 4

	DirtyAll DirtyFlag = DirtyShapes | DirtyLights | DirtyCamera | DirtyBackground
)

// Scene holds the attached shapes and lights, the camera and the background.
// Scenes are not safe for concurrent mutation.
type Scene struct {
	Name string

	shapes     []Shape
	lights     []*Light
	camera     *Camera
	background *Texture

	// Per flag masks; a set bit means the flag is clear for that controller.
	cleanFlags [numDirtyFlags]uint64
}

// Create an empty scene.
func New() *Scene {
	return &Scene{}
}

// Attach a shape. Attaching a shape twice is a no-op.
func (s *Scene) AttachShape(shape Shape) {
	for _, sh := range s.shapes {
		if sh == shape {
			return
		}
	}
	s.shapes = append(s.shapes, shape)
	s.setDirty(DirtyShapes)
}

func (s *Scene) DetachShape(shape Shape) {
	for i, sh := range s.shapes {
		if sh == shape {
			s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
			s.setDirty(DirtyShapes)
			return
		}
	}
}

// Get the attached shapes in attach order. The returned slice must not be
// modified.
func (s *Scene) Shapes() []Shape {
	return s.shapes
}

// Attach a light. Attaching a light twice is a no-op.
func (s *Scene) AttachLight(l *Light) {
	for _, light := range s.lights {
		if light == l {
			return
		}
	}
	s.lights = append(s.lights, l)
	s.setDirty(DirtyLights)
}

func (s *Scene) DetachLight(l *Light) {
	for i, light := range s.lights {
		if light == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			s.setDirty(DirtyLights)
			return
		}
	}
}

// Get the attached lights in attach order. The returned slice must not be
// modified.
func (s *Scene) Lights() []*Light {
	return s.lights
}

func (s *Scene) SetCamera(c *Camera) {
	s.camera = c
	s.setDirty(DirtyCamera)
}

func (s *Scene) Camera() *Camera {
	return s.camera
}

// Set the image shown when primary rays escape the scene.
func (s *Scene) SetBackground(tex *Texture) {
	s.background = tex
	s.setDirty(DirtyBackground)
}

func (s *Scene) Background() *Texture {
	return s.background
}

// Get the structural changes the controller has not processed yet.
func (s *Scene) DirtyFlags(c ControllerID) DirtyFlag {
	var flags DirtyFlag
	for i := 0; i < numDirtyFlags; i++ {
		if s.cleanFlags[i]&c.bit() == 0 {
			flags |= 1 << uint(i)
		}
	}
	return flags
}

// Mark the given structural changes as processed by the controller.
func (s *Scene) ClearDirtyFlags(c ControllerID, flags DirtyFlag) {
	for i := 0; i < numDirtyFlags; i++ {
		if flags&(1<<uint(i)) != 0 {
			s.cleanFlags[i] |= c.bit()
		}
	}
}

func (s *Scene) setDirty(flags DirtyFlag) {
	for i := 0; i < numDirtyFlags; i++ {
		if flags&(1<<uint(i)) != 0 {
			s.cleanFlags[i] = 0
		}
	}
}

// Calculate the world space bounding box of the attached shapes.
func (s *Scene) Bounds() (min, max types.Vec3, ok bool) {
	for _, shape := range s.shapes {
		mesh := shape.Geometry()
		if mesh == nil {
			continue
		}
		xform := shape.Transform()
		for _, v := range mesh.Vertices() {
			p := xform.TransformPoint(v)
			if !ok {
				min, max, ok = p, p, true
				continue
			}
			min = types.MinVec3(min, p)
			max = types.MaxVec3(max, p)
		}
	}
	return min, max, ok
}

// Get the radius of the scene bounding sphere.
func (s *Scene) Radius() float32 {
	min, max, ok := s.Bounds()
	if !ok {
		return 0
	}
	return max.Sub(min).Len() * 0.5
}
