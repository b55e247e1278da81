package scene

import (
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

type CameraKind uint8

const (
	PerspectiveCamera CameraKind = iota
	OrthographicCamera
)

// The camera type controls how primary rays are generated. The basis vectors
// are kept orthonormal by LookAt.
type Camera struct {
	Object

	kind CameraKind

	position types.Vec3
	forward  types.Vec3
	right    types.Vec3
	up       types.Vec3

	// Sensor size in meters for perspective cameras or the view extent for
	// orthographic cameras.
	sensorSize types.Vec2

	// Near and far clipping distances.
	depthRange types.Vec2

	aperture      float32
	focalLength   float32
	focusDistance float32

	// The medium the camera is placed in.
	volume *Volume
}

// Create a perspective camera with a 35mm full frame sensor and a 35mm lens.
func NewPerspectiveCamera(eye, at, up types.Vec3) *Camera {
	c := &Camera{
		kind:          PerspectiveCamera,
		sensorSize:    types.XY(0.036, 0.024),
		depthRange:    types.XY(0, 100000),
		focalLength:   0.035,
		focusDistance: 1,
	}
	c.LookAt(eye, at, up)
	return c
}

// Create an orthographic camera with a unit view extent.
func NewOrthographicCamera(eye, at, up types.Vec3) *Camera {
	c := &Camera{
		kind:       OrthographicCamera,
		sensorSize: types.XY(1, 1),
		depthRange: types.XY(0, 100000),
	}
	c.LookAt(eye, at, up)
	return c
}

// Orient the camera.
func (c *Camera) LookAt(eye, at, up types.Vec3) {
	c.position = eye
	c.forward = at.Sub(eye).Normalize()
	c.right = c.forward.Cross(up).Normalize()
	c.up = c.right.Cross(c.forward)
	c.SetDirty()
}

func (c *Camera) Kind() CameraKind { return c.kind }
func (c *Camera) Position() types.Vec3 { return c.position }
func (c *Camera) Forward() types.Vec3 { return c.forward }
func (c *Camera) Right() types.Vec3 { return c.right }
func (c *Camera) Up() types.Vec3 { return c.up }
func (c *Camera) SensorSize() types.Vec2 { return c.sensorSize }
func (c *Camera) DepthRange() types.Vec2 { return c.depthRange }
func (c *Camera) Aperture() float32 { return c.aperture }
func (c *Camera) FocalLength() float32 { return c.focalLength }
func (c *Camera) FocusDistance() float32 { return c.focusDistance }
func (c *Camera) Volume() *Volume { return c.volume }

// Get the sensor aspect ratio.
func (c *Camera) AspectRatio() float32 {
	if c.sensorSize[1] == 0 {
		return 1
	}
	return c.sensorSize[0] / c.sensorSize[1]
}

func (c *Camera) SetSensorSize(size types.Vec2) error {
	if size[0] <= 0 || size[1] <= 0 {
		return fmt.Errorf("camera: invalid sensor size %v", size)
	}
	c.sensorSize = size
	c.SetDirty()
	return nil
}

func (c *Camera) SetDepthRange(r types.Vec2) error {
	if r[0] < 0 || r[1] <= r[0] {
		return fmt.Errorf("camera: invalid depth range %v", r)
	}
	c.depthRange = r
	c.SetDirty()
	return nil
}

// Set the lens aperture. A non-zero aperture enables depth of field on
// perspective cameras.
func (c *Camera) SetAperture(a float32) {
	c.aperture = a
	c.SetDirty()
}

func (c *Camera) SetFocalLength(f float32) {
	c.focalLength = f
	c.SetDirty()
}

func (c *Camera) SetFocusDistance(d float32) {
	c.focusDistance = d
	c.SetDirty()
}

func (c *Camera) SetVolume(v *Volume) {
	c.volume = v
	c.SetDirty()
}
