package cmd

import (
	"fmt"
	"math/rand"

	"github.com/achilleasa/bvhtrace/accel"
	"github.com/achilleasa/bvhtrace/scene"
	"github.com/urfave/cli"
)

const (
	// Random scenes are generated inside [-sceneExtent, sceneExtent]^3.
	sceneExtent = 10.0

	// Layout of the spheres scene.
	sphereSpacing = 2.0
	sphereRadius  = 0.5
)

// Flags shared by all commands that operate on a generated scene.
var SceneFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "count, n",
		Value: 1000,
		Usage: "number of primitives to generate",
	},
	cli.Int64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "random number generator seed",
	},
	cli.StringFlag{
		Name:  "scene",
		Value: "random",
		Usage: "scene type: spheres or random",
	},
	cli.IntFlag{
		Name:  "leaf-threshold",
		Value: accel.DefaultLeafThreshold,
		Usage: "maximum number of primitives per BVH leaf",
	},
	cli.StringFlag{
		Name:  "split",
		Value: "median",
		Usage: "split strategy: median or sah",
	},
}

// Generate the scene selected by the command flags.
func generateScene(ctx *cli.Context) ([]scene.Primitive, error) {
	count := ctx.Int("count")
	if count <= 0 {
		return nil, fmt.Errorf("invalid primitive count %d", count)
	}

	switch ctx.String("scene") {
	case "spheres":
		return scene.SphereRow(count, sphereSpacing, sphereRadius)
	case "random":
		return scene.RandomScene(rand.New(rand.NewSource(ctx.Int64("seed"))), count, sceneExtent)
	}
	return nil, fmt.Errorf("unknown scene type %q", ctx.String("scene"))
}

func bvhOptions(ctx *cli.Context) (accel.Options, error) {
	split, err := accel.ParseSplitStrategy(ctx.String("split"))
	if err != nil {
		return accel.Options{}, fmt.Errorf("%w: %q", err, ctx.String("split"))
	}

	opts := accel.Options{
		LeafThreshold: ctx.Int("leaf-threshold"),
		Split:         split,
	}
	if err = opts.Validate(); err != nil {
		return accel.Options{}, err
	}
	return opts, nil
}

// Generate the scene and build a BVH over it.
func buildBvh(ctx *cli.Context) (*accel.Bvh, error) {
	opts, err := bvhOptions(ctx)
	if err != nil {
		return nil, err
	}

	prims, err := generateScene(ctx)
	if err != nil {
		return nil, err
	}

	bvh, err := accel.New(opts)
	if err != nil {
		return nil, err
	}

	logger.Noticef("building BVH over %d primitives (scene: %s, split: %s)", len(prims), ctx.String("scene"), opts.Split)
	if err = bvh.Build(prims); err != nil {
		return nil, err
	}
	return bvh, nil
}

// Build a BVH over a generated scene and display its statistics.
func BuildScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	bvh, err := buildBvh(ctx)
	if err != nil {
		return err
	}

	logger.Noticef("BVH statistics\n%s", bvh.Stats())
	return nil
}
