package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// The reflection workflow used by uber materials that do not override it.
type ReflectionMode string

const (
	ReflectionPBR       ReflectionMode = "pbr"
	ReflectionMetalness ReflectionMode = "metalness"
)

// Options for the acceleration structure builder. These are forwarded to the
// intersector each time the scene geometry is rebuilt.
type AccelOptions struct {
	// Acceleration structure type.
	Type string `toml:"type"`

	// BVH builder algorithm.
	Builder string `toml:"builder"`

	// Number of bins used by the SAH builder.
	SAHBins float32 `toml:"sah_bins"`

	// Force a two-level BVH even when the scene contains no instances.
	Force2Level bool `toml:"force_2level"`
}

type ShadingOptions struct {
	// Roughness values below this threshold are treated as perfectly specular.
	RoughnessEpsilon float32 `toml:"roughness_epsilon"`

	DefaultReflectionMode ReflectionMode `toml:"default_reflection_mode"`
}

type LogOptions struct {
	Level string `toml:"level"`
}

// Scene compiler options.
type Options struct {
	Accel   AccelOptions   `toml:"accel"`
	Shading ShadingOptions `toml:"shading"`
	Log     LogOptions     `toml:"log"`
}

// Get the default options.
func Default() Options {
	return Options{
		Accel: AccelOptions{
			Type:    "fatbvh",
			Builder: "sah",
			SAHBins: 16,
		},
		Shading: ShadingOptions{
			RoughnessEpsilon:      1e-3,
			DefaultReflectionMode: ReflectionPBR,
		},
		Log: LogOptions{
			Level: "notice",
		},
	}
}

// Parse a TOML document. Missing keys keep their default values.
func Parse(data []byte) (Options, error) {
	opts := Default()
	if err := toml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Load options from a TOML file.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate option values.
func (o Options) Validate() error {
	switch o.Shading.DefaultReflectionMode {
	case ReflectionPBR, ReflectionMetalness:
	default:
		return fmt.Errorf("config: unsupported reflection mode %q", o.Shading.DefaultReflectionMode)
	}
	if o.Shading.RoughnessEpsilon < 0 {
		return fmt.Errorf("config: roughness epsilon must not be negative; got %f", o.Shading.RoughnessEpsilon)
	}
	if o.Accel.SAHBins < 1 {
		return fmt.Errorf("config: accel.sah_bins must be at least 1; got %f", o.Accel.SAHBins)
	}
	if o.Accel.Type == "" || o.Accel.Builder == "" {
		return fmt.Errorf("config: accel type and builder must be specified")
	}
	return nil
}
