package main

import (
	"os"

	"github.com/crucible-phys/meshshape/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "meshshape"
	app.Usage = "build and query static triangle-mesh collision shapes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "log-level",
			Value: "notice",
			Usage: "logging verbosity: debug, info, notice, warning or error",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile a wavefront obj file into a collision mesh",
			Description: `
Parse a triangle mesh from a wavefront obj file, build a 4-ary BVH tree over
its triangles and serialize the result to a compact binary format.

The compiled mesh is written next to the source file with a .mesh extension
and can be supplied as an argument to the stats, raycast and extract
commands.`,
			ArgsUsage: "mesh1.obj mesh2.obj ...",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "max-tris-per-leaf",
					Usage: "maximum triangles per BVH leaf (0 uses the builder default)",
				},
				cli.Float64Flag{
					Name:  "active-edge-cos",
					Usage: "cosine threshold for marking a shared edge active (0 uses the builder default)",
				},
			},
			Action: cmd.CompileMesh,
		},
		{
			Name:      "stats",
			Usage:     "print BVH statistics for a compiled mesh",
			ArgsUsage: "mesh.mesh",
			Action:    cmd.ShowMeshStats,
		},
		{
			Name:      "raycast",
			Usage:     "cast a ray against a compiled mesh",
			ArgsUsage: "mesh.mesh ox oy oz dx dy dz",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "max-fraction",
					Value: 1.0,
					Usage: "maximum ray fraction to consider a hit",
				},
			},
			Action: cmd.CastRay,
		},
		{
			Name:      "extract",
			Usage:     "list triangles of leaves overlapping an AABB in a compiled mesh",
			ArgsUsage: "mesh.mesh minx miny minz maxx maxy maxz",
			Action:    cmd.ExtractTriangles,
		},
	}

	if err := app.Run(os.Args); err != nil {
		cmd.Fatal(err)
	}
}
