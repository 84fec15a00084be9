package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/achilleasa/bvhtrace/accel"
	"github.com/achilleasa/bvhtrace/scene"
	"github.com/achilleasa/bvhtrace/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

// Nearest hits reported by the BVH and the linear scan may differ by at
// most this amount.
const verifyTolerance = 1e-9

// Vertical field of view for the camera ray source.
const cameraFOV = 60.0

var errVerifyMismatch = errors.New("BVH result does not match linear scan")

// Flags for the probe command, in addition to SceneFlags.
var ProbeFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "rays, r",
		Value: 100000,
		Usage: "number of rays to trace",
	},
	cli.IntFlag{
		Name:  "workers, w",
		Value: 0,
		Usage: "number of concurrent workers; 0 uses one worker per CPU",
	},
	cli.StringFlag{
		Name:  "source",
		Value: "random",
		Usage: "ray source: random rays or a camera grid looking at the scene",
	},
	cli.StringFlag{
		Name:  "mode",
		Value: "nearest",
		Usage: "query mode: nearest or any",
	},
	cli.BoolFlag{
		Name:  "verify",
		Usage: "cross-check every query against a linear scan",
	},
}

type probeStats struct {
	rays     int
	workers  int
	mode     accel.QueryMode
	verified bool

	hits     uint64
	counters accel.Counters
	elapsed  time.Duration
}

// Build a BVH over a generated scene and trace rays against it.
func ProbeScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	mode, err := accel.ParseQueryMode(ctx.String("mode"))
	if err != nil {
		return fmt.Errorf("%w: %q", err, ctx.String("mode"))
	}

	rayCount := ctx.Int("rays")
	if rayCount <= 0 {
		return fmt.Errorf("invalid ray count %d", rayCount)
	}

	workers := ctx.Int("workers")
	if workers < 0 {
		return fmt.Errorf("invalid worker count %d", workers)
	} else if workers == 0 {
		workers = runtime.NumCPU()
	}

	bvh, err := buildBvh(ctx)
	if err != nil {
		return err
	}

	var ref *accel.LinearScan
	if ctx.Bool("verify") {
		ref = &accel.LinearScan{}
		if err = ref.Build(bvh.Primitives()); err != nil {
			return err
		}
	}

	rays, err := generateRays(ctx, rayCount)
	if err != nil {
		return err
	}

	logger.Noticef("tracing %d rays using %d workers (mode: %s, verify: %t)", rayCount, workers, mode, ref != nil)
	stats, err := probe(context.Background(), bvh, ref, rays, mode, workers)
	if err != nil {
		return err
	}

	displayProbeStats(stats)
	return nil
}

// Generate count rays using the source selected by the command flags.
func generateRays(ctx *cli.Context, count int) ([]scene.Ray, error) {
	switch ctx.String("source") {
	case "random":
		// Derive the ray seed from the scene seed so runs are reproducible
		return scene.RandomRays(rand.New(rand.NewSource(ctx.Int64("seed")+1)), count, sceneExtent), nil
	case "camera":
		camera, err := scene.NewCamera(
			types.XYZ(0, sceneExtent, 3*sceneExtent),
			types.XYZ(0, 0, 0),
			types.XYZ(0, 1, 0),
			cameraFOV, 1,
		)
		if err != nil {
			return nil, err
		}

		// Use the smallest square frame with at least count pixels
		frameW := int(math.Ceil(math.Sqrt(float64(count))))
		return camera.Rays(frameW, frameW)[:count], nil
	}
	return nil, fmt.Errorf("unknown ray source %q", ctx.String("source"))
}

// Trace rays against bvh from a pool of workers. If ref is not nil, each
// result is compared against it and the first mismatch aborts the probe.
func probe(ctx context.Context, bvh *accel.Bvh, ref *accel.LinearScan, rays []scene.Ray, mode accel.QueryMode, workers int) (probeStats, error) {
	var hits atomic.Uint64
	bvh.ResetCounters()

	g, gctx := errgroup.WithContext(ctx)
	start := time.Now()
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(rays); i += workers {
				if gctx.Err() != nil {
					return gctx.Err()
				}

				rec, ok := bvh.Intersect(rays[i], mode)
				if ok {
					hits.Add(1)
				}

				if ref == nil {
					continue
				}
				if err := verifyQuery(ref, rays[i], mode, rec, ok); err != nil {
					return fmt.Errorf("ray %d: %w", i, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return probeStats{}, err
	}

	return probeStats{
		rays:     len(rays),
		workers:  workers,
		mode:     mode,
		verified: ref != nil,
		hits:     hits.Load(),
		counters: bvh.Counters(),
		elapsed:  time.Since(start),
	}, nil
}

func verifyQuery(ref *accel.LinearScan, ray scene.Ray, mode accel.QueryMode, rec scene.HitRecord, ok bool) error {
	expRec, expOk := ref.Intersect(ray, mode)
	if ok != expOk {
		return fmt.Errorf("%w: expected hit to be %t; got %t", errVerifyMismatch, expOk, ok)
	}
	if ok && mode == accel.Nearest && math.Abs(rec.T-expRec.T) > verifyTolerance {
		return fmt.Errorf("%w: expected nearest hit at t=%f; got t=%f", errVerifyMismatch, expRec.T, rec.T)
	}
	return nil
}

func displayProbeStats(stats probeStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Rays", "Workers", "Mode", "Hits", "Visited", "Culled", "Cull ratio", "Verified"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.rays),
		fmt.Sprintf("%d", stats.workers),
		stats.mode.String(),
		fmt.Sprintf("%d (%02.1f %%)", stats.hits, 100*float64(stats.hits)/float64(stats.rays)),
		fmt.Sprintf("%d", stats.counters.Visited),
		fmt.Sprintf("%d", stats.counters.Culled),
		fmt.Sprintf("%.3f", stats.counters.CullRatio()),
		fmt.Sprintf("%t", stats.verified),
	})

	raysPerSec := float64(stats.rays) / math.Max(stats.elapsed.Seconds(), 1e-9)
	table.SetFooter([]string{"", "", "", "", "", "", "TOTAL", fmt.Sprintf("%s (%.0f rays/s)", stats.elapsed, raysPerSec)})

	table.Render()
	logger.Noticef("probe statistics\n%s", buf.String())
}
