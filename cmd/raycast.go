package cmd

import (
	"errors"
	"strconv"

	"github.com/crucible-phys/meshshape/asset"
	"github.com/crucible-phys/meshshape/mesh"
	"github.com/crucible-phys/meshshape/mesh/query"
	"github.com/crucible-phys/meshshape/types"
	"github.com/urfave/cli"
)

// CastRay loads a compiled mesh file (a local path or an http(s) URL) and
// casts a single ray against it, reporting the closest hit's fraction,
// subshape id and material.
func CastRay(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 7 {
		return errors.New("usage: raycast <mesh-file> ox oy oz dx dy dz")
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

	ray := query.Ray{
		Origin: types.Vec3{comps[0], comps[1], comps[2]},
		Dir:    types.Vec3{comps[3], comps[4], comps[5]},
	}

	hit, ok := shape.CastRay(ray, float32(ctx.Float64("max-fraction")))
	if !ok {
		logger.Notice("no hit")
		return nil
	}

	mat := shape.GetMaterial(hit.SubShapeID)
	normal := shape.GetSurfaceNormal(hit.SubShapeID, types.Vec3{})
	logger.Noticef("hit fraction=%.6f subshape=%d material=%q normal=%v", hit.Fraction, hit.SubShapeID, mat, normal)
	return nil
}

func parseFloats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}
