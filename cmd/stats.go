package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/crucible-phys/meshshape/asset"
	"github.com/crucible-phys/meshshape/mesh"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ShowMeshStats loads a compiled mesh file (a local path or an http(s) URL)
// and prints its BVH statistics.
func ShowMeshStats(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing compiled mesh file argument")
	}

	f, err := asset.Open(ctx.Args().First(), nil)
	if err != nil {
		return err
	}
	defer f.Close()

	shape, err := mesh.Restore(f)
	if err != nil {
		return err
	}

	logger.Noticef("mesh statistics:\n%s", formatStats(shape))
	return nil
}

func formatStats(shape *mesh.Shape) string {
	stats := shape.Stats()
	bounds := shape.GetLocalBounds()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"nodes", fmt.Sprintf("%d", stats.Nodes)})
	table.Append([]string{"leaves", fmt.Sprintf("%d", stats.Leaves)})
	table.Append([]string{"triangles", fmt.Sprintf("%d", stats.Triangles)})
	table.Append([]string{"buffer size", fmt.Sprintf("%d bytes", shape.BufferSize())})
	table.Append([]string{"local bounds min", fmt.Sprintf("%v", bounds.Min)})
	table.Append([]string{"local bounds max", fmt.Sprintf("%v", bounds.Max)})
	table.Render()

	return buf.String()
}
