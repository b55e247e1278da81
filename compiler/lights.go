package compiler

import (
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/distribution"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/gpuscene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// Write light records and the light importance distribution. The first image
// based light becomes the environment light.
func (cc *compileContext) writeLights() (int, error) {
	snap := cc.state.snapshot
	lights := cc.scn.Lights()

	records := make([]gpuscene.Light, len(lights))
	weights := make([]float32, len(lights))
	envMapIdx := int32(-1)
	sceneRadius := cc.scn.Radius()

	for idx, l := range lights {
		rec, err := cc.lightRecord(l)
		if err != nil {
			return 0, err
		}
		records[idx] = rec
		weights[idx] = l.Power(sceneRadius).Vec4(0).Luminance()
		if l.Kind() == scene.ImageBasedLight && envMapIdx == -1 {
			envMapIdx = int32(idx)
		}
	}

	packed := distribution.New(weights).Pack()

	if err := ensureCapacity(cc, &snap.Lights, "lights", len(records), device.MemReadOnly); err != nil {
		return 0, err
	}
	if err := ensureCapacity(cc, &snap.LightDistribution, "light distribution", len(packed), device.MemReadOnly); err != nil {
		return 0, err
	}

	err := writeBuffer(cc, snap.Lights, func(out []gpuscene.Light) error {
		copy(out, records)
		return nil
	})
	if err != nil {
		return 0, err
	}
	err = writeBuffer(cc, snap.LightDistribution, func(out []uint32) error {
		copy(out, packed)
		return nil
	})
	if err != nil {
		return 0, err
	}

	snap.NumLights = len(records)
	snap.EnvMapIdx = envMapIdx
	return snap.NumLights, nil
}

func (cc *compileContext) lightRecord(l *scene.Light) (gpuscene.Light, error) {
	rec := gpuscene.Light{
		ShapeIdx:           -1,
		PrimIdx:            -1,
		Radiance:           l.Radiance().Vec4(0),
		TexIdx:             -1,
		ReflectionTexIdx:   -1,
		RefractionTexIdx:   -1,
		TransparencyTexIdx: -1,
		BackgroundTexIdx:   -1,
	}

	switch l.Kind() {
	case scene.PointLight:
		rec.Type = gpuscene.LightPoint
		rec.Position = l.Position().Vec4(1)
	case scene.DirectionalLight:
		rec.Type = gpuscene.LightDirectional
		rec.Direction = l.Direction().Vec4(0)
	case scene.SpotLight:
		rec.Type = gpuscene.LightSpot
		rec.Position = l.Position().Vec4(1)
		rec.Direction = l.Direction().Vec4(0)
		cone := l.Cone()
		rec.Cone = types.XYZW(cone[0], cone[1], 0, 0)
	case scene.AreaLight:
		rec.Type = gpuscene.LightArea
		shapeIdx, ok := cc.part.recordIndex[l.Shape()]
		if l.Shape() == nil || !ok {
			return rec, ErrInvalidAreaLight
		}
		mesh := l.Shape().Geometry()
		if l.Primitive() < 0 || l.Primitive() >= mesh.NumFaces() {
			return rec, fmt.Errorf("%w: primitive %d out of range [0, %d)", ErrInvalidAreaLight, l.Primitive(), mesh.NumFaces())
		}
		rec.ShapeIdx = int32(shapeIdx)
		rec.PrimIdx = int32(l.Primitive())
	case scene.ImageBasedLight:
		rec.Type = gpuscene.LightIBL
		rec.TexIdx = cc.textureIndex(l.Texture())
		rec.ReflectionTexIdx = cc.textureIndex(l.ReflectionTexture())
		rec.RefractionTexIdx = cc.textureIndex(l.RefractionTexture())
		rec.TransparencyTexIdx = cc.textureIndex(l.TransparencyTexture())
		rec.BackgroundTexIdx = cc.textureIndex(l.BackgroundTexture())
		rec.Multiplier = l.Multiplier()
	}
	return rec, nil
}

// Write the camera record.
func (cc *compileContext) writeCamera() (int, error) {
	snap := cc.state.snapshot
	cam := cc.scn.Camera()

	camType := gpuscene.CameraPerspective
	switch {
	case cam.Kind() == scene.OrthographicCamera:
		camType = gpuscene.CameraOrthographic
	case cam.Aperture() > 0:
		camType = gpuscene.CameraPhysicalPerspective
	}

	if err := ensureCapacity(cc, &snap.Camera, "camera", 1, device.MemReadOnly); err != nil {
		return 0, err
	}
	err := writeBuffer(cc, snap.Camera, func(out []gpuscene.Camera) error {
		out[0] = gpuscene.Camera{
			Forward:       cam.Forward().Vec4(0),
			Right:         cam.Right().Vec4(0),
			Up:            cam.Up().Vec4(0),
			Position:      cam.Position().Vec4(1),
			SensorSize:    cam.SensorSize(),
			DepthRange:    cam.DepthRange(),
			AspectRatio:   cam.AspectRatio(),
			FocalLength:   cam.FocalLength(),
			FocusDistance: cam.FocusDistance(),
			Aperture:      cam.Aperture(),
			VolumeIdx:     cc.volumeIndex(cam.Volume()),
			Type:          camType,
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	snap.CameraType = camType
	return 1, nil
}

// Update scene level attributes.
func (cc *compileContext) writeBackground() (int, error) {
	cc.state.snapshot.BackgroundIdx = cc.textureIndex(cc.scn.Background())
	return 1, nil
}
