package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/accel/memory"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/compiler"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device/host"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device/opencl"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene/builtin"
	"github.com/urfave/cli"
)

// Compile one or more builtin scenes and display the resulting buffer
// layout.
func CompileScene(ctx *cli.Context) error {
	opts, err := setup(ctx)
	if err != nil {
		return err
	}

	names := []string(ctx.Args())
	if len(names) == 0 {
		names = builtin.Names()
	}

	devCtx, closeFn, err := openDevice(ctx.String("device"), ctx.String("match"))
	if err != nil {
		return err
	}
	defer closeFn()

	ctrl, err := compiler.New(memory.New(), devCtx, opts)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	for _, name := range names {
		scn, err := builtin.Build(name)
		if err != nil {
			return err
		}

		for pass := 0; pass < ctx.Int("passes"); pass++ {
			snap, err := ctrl.CompileScene(context.Background(), scn)
			if err != nil {
				return err
			}
			logger.Noticef("scene %q (pass %d) compile statistics:\n%s", name, pass+1, snap.LastCompile)
			if pass == 0 {
				logger.Noticef("scene %q buffers:\n%s", name, snap.Stats())
			}

			// Touch every shape so the next pass exercises the
			// incremental path.
			for _, shape := range scn.Shapes() {
				shape.SetTransform(shape.Transform())
			}
		}
	}

	if ctx.Bool("dump-headers") {
		fmt.Fprint(os.Stdout, ctrl.Programs().Source(""))
	}
	return nil
}

// Open the device selected by the --device flag. The returned function
// releases the device.
func openDevice(kind, match string) (device.Context, func(), error) {
	switch kind {
	case "host":
		return host.NewContext(), func() {}, nil
	case "opencl":
		devList, err := opencl.SelectDevices(opencl.AllDevices, match)
		if err != nil {
			return nil, nil, err
		}
		if len(devList) == 0 {
			return nil, nil, fmt.Errorf("no opencl device matching %q found", match)
		}

		dev := devList[0]
		if err = dev.Init(); err != nil {
			return nil, nil, err
		}
		logger.Noticef(`using device "%s"`, dev.Name)
		return dev, dev.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported device type %q; supported types are host and opencl", kind)
}
