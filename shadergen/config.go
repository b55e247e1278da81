// Package shadergen generates OpenCL C source specialized for the material
// configurations used by a scene.
package shadergen

import (
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
)

// Config identifies an uber material shader configuration: the enabled
// layer mask widened with the reflection workflow bit.
type Config uint32

// Set when reflections use the metalness workflow.
const MetalnessBit Config = 0x100

// Build the configuration key for a layer mask and a resolved reflection
// mode.
func ConfigFor(layers scene.LayerMask, mode scene.ReflectionMode) Config {
	key := Config(layers & scene.AllLayers)
	if mode == scene.ReflectionMetalness && layers.Has(scene.ReflectionLayer) {
		key |= MetalnessBit
	}
	return key
}

func (c Config) Layers() scene.LayerMask {
	return scene.LayerMask(c) & scene.AllLayers
}

func (c Config) Mode() scene.ReflectionMode {
	if c&MetalnessBit != 0 {
		return scene.ReflectionMetalness
	}
	return scene.ReflectionPBR
}

func (c Config) Has(layer scene.LayerMask) bool {
	return c.Layers().Has(layer)
}

// Get the hex form of the key used as a function name suffix.
func (c Config) String() string {
	return fmt.Sprintf("0x%04X", uint32(c))
}

func (c Config) describe() string {
	if c&MetalnessBit != 0 {
		return c.Layers().String() + " (metalness)"
	}
	return c.Layers().String()
}
