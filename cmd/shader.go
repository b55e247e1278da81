package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/config"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/shadergen"
	"github.com/urfave/cli"
)

// Print the generated uber material functions for a layer combination.
func GenerateShader(ctx *cli.Context) error {
	opts, err := setup(ctx)
	if err != nil {
		return err
	}

	layers, err := parseLayers(ctx.String("layers"))
	if err != nil {
		return err
	}
	if mode := ctx.String("mode"); mode != "" {
		opts.Shading.DefaultReflectionMode = config.ReflectionMode(mode)
		if err = opts.Validate(); err != nil {
			return err
		}
	}

	gen := shadergen.NewUberGenerator(opts.Shading)
	fns, _ := gen.AddMaterial(scene.NewUberMaterial(layers))
	logger.Infof("generated configuration %s for layers %s", fns.Config, layers)

	if ctx.Bool("full") {
		fmt.Fprint(os.Stdout, gen.Source())
		return nil
	}
	fmt.Fprint(os.Stdout, fns.Source())
	return nil
}

// Parse a comma separated list of layer names.
func parseLayers(list string) (scene.LayerMask, error) {
	var layers scene.LayerMask
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		layer, ok := scene.ParseLayer(name)
		if !ok {
			return 0, fmt.Errorf("unknown uber material layer %q", name)
		}
		layers |= layer
	}
	return layers, nil
}
