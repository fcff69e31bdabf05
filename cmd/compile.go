package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/crucible-phys/meshshape/asset"
	"github.com/crucible-phys/meshshape/mesh"
	"github.com/crucible-phys/meshshape/meshio"
	"github.com/urfave/cli"
)

// CompileMesh reads each argument as a wavefront obj file, builds a BVH
// collision shape from it and writes the result next to the source file
// with a .mesh extension.
func CompileMesh(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		return errors.New("missing obj file argument")
	}

	maxTrisPerLeaf := ctx.Int("max-tris-per-leaf")
	activeEdgeCos := float32(ctx.Float64("active-edge-cos"))

	for idx := 0; idx < ctx.NArg(); idx++ {
		objFile := ctx.Args().Get(idx)
		if !strings.HasSuffix(objFile, ".obj") {
			logger.Warningf("skipping unsupported file %s", objFile)
			continue
		}

		logger.Noticef("parsing and compiling mesh: %s", objFile)
		res, err := asset.Open(objFile, nil)
		if err != nil {
			return err
		}
		vertices, triangles, materials, err := meshio.ReadOBJ(res)
		res.Close()
		if err != nil {
			return err
		}

		settings := mesh.NewIndexedSettings(vertices, triangles, materials)
		if maxTrisPerLeaf > 0 {
			settings.MaxTrianglesPerLeaf = maxTrisPerLeaf
		}
		if activeEdgeCos > 0 {
			settings.ActiveEdgeCosThreshold = activeEdgeCos
		}

		shape, err := mesh.Build(settings)
		if err != nil {
			return err
		}
		logger.Noticef("compiled mesh statistics:\n%s", formatStats(shape))

		meshFile := strings.TrimSuffix(objFile, ".obj") + ".mesh"
		out, err := os.Create(meshFile)
		if err != nil {
			return err
		}
		err = shape.Save(out)
		out.Close()
		if err != nil {
			return err
		}
		logger.Noticef("wrote %s", meshFile)
	}

	return nil
}
