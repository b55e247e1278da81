package main

import (
	"fmt"
	"os"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "baikal"
	app.Usage = "compile scenes into gpu buffers and generate uber material shaders"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load compiler options from a TOML file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile builtin scenes into device buffers",
			Description: `
Build one or more procedurally generated scenes, compile them for the selected
device and display the resulting buffer layout. When no scene names are given
all builtin scenes are compiled.

Each additional pass touches every shape so that the incremental update path
is exercised.`,
			ArgsUsage: "scene1 scene2 ...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "device, d",
					Value: "host",
					Usage: "target device type (host or opencl)",
				},
				cli.StringFlag{
					Name:  "match, m",
					Usage: "select the first opencl device whose name contains this value",
				},
				cli.IntFlag{
					Name:  "passes, p",
					Value: 1,
					Usage: "number of compile passes",
				},
				cli.BoolFlag{
					Name:  "dump-headers",
					Usage: "print the generated program headers",
				},
			},
			Action: cmd.CompileScene,
		},
		{
			Name:  "shader",
			Usage: "print the generated uber material functions for a layer combination",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "layers, l",
					Value: "diffuse",
					Usage: "comma separated list of enabled layers",
				},
				cli.StringFlag{
					Name:  "mode",
					Usage: "reflection workflow (pbr or metalness)",
				},
				cli.BoolFlag{
					Name:  "full",
					Usage: "print the complete header including dispatch functions",
				},
			},
			Action: cmd.GenerateShader,
		},
		{
			Name:   "scenes",
			Usage:  "list builtin scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:   "list-devices",
			Usage:  "list available opencl devices",
			Action: cmd.ListDevices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
