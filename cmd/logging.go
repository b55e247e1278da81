package cmd

import (
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/config"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/log"
	"github.com/urfave/cli"
)

var logger = log.New("baikal")

// Load the compiler options and configure logging. The -v and -vv flags take
// precedence over the configured log level.
func setup(ctx *cli.Context) (config.Options, error) {
	opts := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if opts, err = config.Load(path); err != nil {
			return opts, err
		}
	}

	level, err := log.ParseLevel(opts.Log.Level)
	if err != nil {
		return opts, err
	}
	log.SetLevel(level)

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
	return opts, nil
}
