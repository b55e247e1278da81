package cmd

import (
	"bytes"
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene/builtin"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display the builtin scenes that can be passed to the compile command.
func ListScenes(ctx *cli.Context) error {
	if _, err := setup(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Scene", "Shapes", "Lights", "Radius"})
	for _, name := range builtin.Names() {
		scn, err := builtin.Build(name)
		if err != nil {
			return err
		}
		table.Append([]string{
			name,
			fmt.Sprint(len(scn.Shapes())),
			fmt.Sprint(len(scn.Lights())),
			fmt.Sprintf("%.2f", scn.Radius()),
		})
	}
	table.Render()

	logger.Noticef("builtin scenes:\n%s", buf.String())
	return nil
}
