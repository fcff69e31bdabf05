package cmd

import (
	"errors"

	"github.com/crucible-phys/meshshape/asset"
	"github.com/crucible-phys/meshshape/mesh"
	"github.com/crucible-phys/meshshape/mesh/query"
	"github.com/crucible-phys/meshshape/types"
	"github.com/urfave/cli"
)

// ExtractTriangles loads a compiled mesh file (a local path or an http(s)
// URL) and streams the triangles of every leaf whose bounds overlap the given
// local-space AABB to the log.
func ExtractTriangles(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 7 {
		return errors.New("usage: extract <mesh-file> minx miny minz maxx maxy maxz")
	}

	f, err := asset.Open(ctx.Args().Get(0), nil)
	if err != nil {
		return err
	}
	defer f.Close()

	shape, err := mesh.Restore(f)
	if err != nil {
		return err
	}

	comps, err := parseFloats(ctx.Args().Tail())
	if err != nil {
		return err
	}

	box := types.AABB{
		Min: types.Vec3{comps[0], comps[1], comps[2]},
		Max: types.Vec3{comps[3], comps[4], comps[5]},
	}

	extractCtx := shape.GetTrianglesStart(box, types.Vec3{}, types.QuatIdent(), types.Vec3{1, 1, 1})

	const batchSize = 64
	tris := make([][3]types.Vec3, batchSize)
	mats := make([]byte, batchSize)

	total := 0
	for {
		n := shape.GetTrianglesNext(extractCtx, tris, mats)
		for i := 0; i < n; i++ {
			logger.Noticef("triangle %d: %v material=%d", total+i, tris[i], mats[i])
		}
		total += n
		if extractCtx.State() == query.Done {
			break
		}
	}

	logger.Noticef("extracted %d triangles", total)
	return nil
}
