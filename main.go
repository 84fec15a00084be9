package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/bvhtrace/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "bvhtrace"
	app.Usage = "build bounding volume hierarchies and probe them with rays"
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
		cli.StringSliceFlag{
			Name:  "log-level",
			Value: &cli.StringSlice{},
			Usage: "override the level of a single logger (e.g. bvh=debug)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build a BVH over a generated scene and display its statistics",
			Description: `
Generate a procedural scene (a row of spheres or a random mix of transformed
spheres, boxes, cylinders and triangles), build a BVH over it and print the
resulting tree statistics.`,
			Flags:  cmd.SceneFlags,
			Action: cmd.BuildScene,
		},
		{
			Name:  "probe",
			Usage: "trace random rays against a BVH built over a generated scene",
			Description: `
Build a BVH over a procedural scene and trace random rays against it from a
pool of concurrent workers. Use --verify to cross-check every query against an
exhaustive linear scan.`,
			Flags:  append(append([]cli.Flag{}, cmd.SceneFlags...), cmd.ProbeFlags...),
			Action: cmd.ProbeScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
