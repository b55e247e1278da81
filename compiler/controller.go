// Package compiler converts a mutable scene graph into the device buffers
// consumed by the render kernels. Compiles are incremental: only the
// categories of data affected by changes since the previous compile are
// rewritten.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/accel"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/collector"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/config"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/gpuscene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/log"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/program"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/shadergen"
)

var (
	ErrNoShapes         = errors.New("compiler: scene contains no shapes")
	ErrNoCamera         = errors.New("compiler: scene has no camera")
	ErrInvalidInstance  = errors.New("compiler: instance base is not a mesh")
	ErrInvalidAreaLight = errors.New("compiler: area light shape is not part of the scene")
)

// The command queue used for all buffer transfers.
const transferQueue = 0

// Per-scene state kept between compiles.
type sceneState struct {
	snapshot *gpuscene.Snapshot
	compiled bool

	// Categories that still need to be written.
	pending category

	materials *collector.Bundle[*scene.Material]
	textures  *collector.Bundle[*scene.Texture]
	volumes   *collector.Bundle[*scene.Volume]
	inputMaps *collector.Bundle[*scene.InputMap]
	leaves    *collector.Bundle[*scene.InputMap]

	// The partition and intersector shapes created by the last geometry
	// rebuild. Intersector shapes are indexed by shape record.
	partition   *partition
	accelShapes []accel.Shape
}

// Controller compiles scenes for a device and an intersector. A controller
// is not meant to compile scenes concurrently; concurrent calls are
// serialized.
type Controller struct {
	mu     sync.Mutex
	logger log.Logger

	id          scene.ControllerID
	intersector accel.Intersector
	devCtx      device.Context
	opts        config.Options

	programs    *program.Manager
	uber        *shadergen.UberGenerator
	inputMapGen shadergen.InputMapGenerator

	// Used by shapes without a material.
	defaultMaterial *scene.Material

	states map[*scene.Scene]*sceneState
}

// Create a new controller.
func New(intersector accel.Intersector, devCtx device.Context, opts config.Options) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	defaultMaterial := scene.NewSingleBxdfMaterial(scene.BxdfLambert)
	defaultMaterial.Name = "default"

	return &Controller{
		logger:          log.New("scene compiler"),
		id:              scene.NewControllerID(),
		intersector:     intersector,
		devCtx:          devCtx,
		opts:            opts,
		programs:        program.NewManager(),
		uber:            shadergen.NewUberGenerator(opts.Shading),
		defaultMaterial: defaultMaterial,
		states:          make(map[*scene.Scene]*sceneState),
	}, nil
}

// Get the controller id used for dirty tracking.
func (c *Controller) ID() scene.ControllerID {
	return c.id
}

// Get the program manager that receives the generated headers.
func (c *Controller) Programs() *program.Manager {
	return c.programs
}

// Get the material assigned to shapes without a material.
func (c *Controller) DefaultMaterial() *scene.Material {
	return c.defaultMaterial
}

// Compile a scene and return its device snapshot. The same snapshot is
// returned for every compile of the same scene; its buffers are updated in
// place.
//
// If compilation fails the categories that could not be written are retried
// by the next call.
func (c *Controller) CompileScene(ctx context.Context, scn *scene.Scene) (*gpuscene.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(scn.Shapes()) == 0 {
		return nil, ErrNoShapes
	}
	if scn.Camera() == nil {
		return nil, ErrNoCamera
	}

	state := c.states[scn]
	if state == nil {
		state = &sceneState{snapshot: gpuscene.NewSnapshot()}
		c.states[scn] = state
	}

	start := time.Now()
	cc, err := c.newCompileContext(scn, state)
	if err != nil {
		return nil, err
	}

	state.pending |= cc.detectChanges()
	if state.pending == 0 {
		c.logger.Debugf("scene %q is up to date", scn.Name)
		return state.snapshot, nil
	}
	c.logger.Noticef("compiling scene %q (pending: %s)", scn.Name, state.pending)

	if err = cc.writeCategories(ctx); err != nil {
		return nil, err
	}

	cc.commit()
	cc.stats.Duration = time.Since(start)
	state.snapshot.LastCompile = cc.stats
	c.logger.Noticef("compiled scene %q in %d ms", scn.Name, cc.stats.Duration.Nanoseconds()/1e6)
	return state.snapshot, nil
}

// Release the device buffers and intersector shapes of a scene.
func (c *Controller) ReleaseScene(scn *scene.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseState(scn)
}

// Release all scenes compiled by the controller.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for scn := range c.states {
		c.releaseState(scn)
	}
}

func (c *Controller) releaseState(scn *scene.Scene) {
	state, exists := c.states[scn]
	if !exists {
		return
	}
	for _, shape := range state.accelShapes {
		c.intersector.DetachShape(shape)
		c.intersector.DeleteShape(shape)
	}
	state.snapshot.Release()
	delete(c.states, scn)
}

// Forward the acceleration structure options to the intersector.
func (c *Controller) applyAccelOptions() error {
	force2Level := float32(0)
	if c.opts.Accel.Force2Level {
		force2Level = 1
	}

	for _, opt := range []struct {
		name  string
		value interface{}
	}{
		{accel.OptionAccelType, c.opts.Accel.Type},
		{accel.OptionBuilder, c.opts.Accel.Builder},
		{accel.OptionSAHBins, c.opts.Accel.SAHBins},
		{accel.OptionForce2Level, force2Level},
	} {
		if err := c.intersector.SetOption(opt.name, opt.value); err != nil {
			return fmt.Errorf("compiler: could not set intersector option %q: %w", opt.name, err)
		}
	}
	return nil
}
