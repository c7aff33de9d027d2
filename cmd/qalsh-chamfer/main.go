// Command qalsh-chamfer builds QALSH indices over point sets and
// estimates the Chamfer distance between two indexed sets.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/intellect4all/qalsh-chamfer/chamfer"
	"github.com/intellect4all/qalsh-chamfer/dataset"
	"github.com/intellect4all/qalsh-chamfer/pointset"
	"github.com/intellect4all/qalsh-chamfer/qalsh"
)

var log = logging.Logger("qalsh-chamfer")

func main() {
	app := &cli.App{
		Name:  "qalsh-chamfer",
		Usage: "build QALSH indices and estimate Chamfer distance between point sets",
		Commands: []*cli.Command{
			newBuildIndexCommand(),
			newEstimateChamferCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newBuildIndexCommand() *cli.Command {
	return &cli.Command{
		Name:      "build-index",
		Usage:     "build a QALSH index over the point set in a directory",
		ArgsUsage: "<dataset-dir>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "ratio", Aliases: []string{"c"}, Usage: "approximation ratio", Value: 2.0},
			&cli.UintFlag{Name: "page-size", Aliases: []string{"B"}, Usage: "B+ tree page size in bytes", Value: 4096},
			&cli.UintFlag{Name: "num-hash-tables", Aliases: []string{"m"}, Usage: "override derived table count (0 = derive)"},
			&cli.UintFlag{Name: "collision-threshold", Aliases: []string{"l"}, Usage: "override derived collision threshold (0 = derive)"},
			&cli.Float64Flag{Name: "bucket-width", Aliases: []string{"w"}, Usage: "override derived bucket width (0 = derive)"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for dot-vector sampling", Value: 1},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log the resolved configuration before building"},
		},
		Action: buildIndexAction,
	}
}

func buildIndexAction(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return fmt.Errorf("build-index requires exactly one argument: <dataset-dir>")
	}
	dir := cctx.Args().Get(0)

	reader, err := pointset.NewDiskReader(filepath.Join(dir, dataset.PointSetFileName))
	if err != nil {
		return err
	}
	defer reader.Close()

	cfg := qalsh.NewConfig(cctx.Float64("ratio"), uint32(cctx.Uint("page-size")))
	cfg.NumHashTables = uint32(cctx.Uint("num-hash-tables"))
	cfg.CollisionThreshold = uint32(cctx.Uint("collision-threshold"))
	cfg.BucketWidth = cctx.Float64("bucket-width")

	if cctx.Bool("verbose") {
		log.Infow("resolved build-index configuration",
			"dir", dir, "ratio", cfg.ApproximationRatio, "pageSize", cfg.PageSize,
			"numHashTablesOverride", cfg.NumHashTables, "collisionThresholdOverride", cfg.CollisionThreshold,
			"bucketWidthOverride", cfg.BucketWidth)
	}

	rnd := rand.New(rand.NewSource(cctx.Int64("seed")))
	return qalsh.BuildIndex(dir, reader, cfg, rnd)
}

func newEstimateChamferCommand() *cli.Command {
	return &cli.Command{
		Name:      "estimate-chamfer",
		Usage:     "estimate the Chamfer distance between two indexed point sets",
		ArgsUsage: "<dir-a> <dir-b>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "samples", Aliases: []string{"k"}, Usage: "sample count per direction (0 = floor(ln|S|))"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for importance sampling", Value: 1},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log intermediate directional estimates"},
		},
		Action: estimateChamferAction,
	}
}

func estimateChamferAction(cctx *cli.Context) error {
	if cctx.NArg() != 2 {
		return fmt.Errorf("estimate-chamfer requires exactly two arguments: <dir-a> <dir-b>")
	}
	dirA := cctx.Args().Get(0)
	dirB := cctx.Args().Get(1)
	seed := cctx.Int64("seed")
	k := cctx.Int("samples")
	verbose := cctx.Bool("verbose")

	aToB, err := directionalChamferEstimate(dirA, dirB, k, seed, verbose)
	if err != nil {
		return err
	}
	bToA, err := directionalChamferEstimate(dirB, dirA, k, seed, verbose)
	if err != nil {
		return err
	}

	total := chamfer.EstimateTotal(aToB, bToA)
	fmt.Printf("chamfer_distance = %g\n", total)

	if md, err := dataset.LoadMetadata(filepath.Join(dirA, dataset.MetadataFileName)); err == nil && md.HasChamferDistance {
		relErr := relativeError(total, md.ChamferDistance)
		fmt.Printf("relative_error = %g\n", relErr)
	}

	return nil
}

// directionalChamferEstimate estimates the contribution of the set in
// fromDir to the Chamfer distance against the index built over toDir.
func directionalChamferEstimate(fromDir, toDir string, k int, seed int64, verbose bool) (float64, error) {
	fromReader, err := pointset.NewDiskReader(filepath.Join(fromDir, dataset.PointSetFileName))
	if err != nil {
		return 0, err
	}
	defer fromReader.Close()

	toReader, err := pointset.NewDiskReader(filepath.Join(toDir, dataset.PointSetFileName))
	if err != nil {
		return 0, err
	}
	defer toReader.Close()

	searcher, err := qalsh.OpenSearcher(toDir, toReader)
	if err != nil {
		return 0, err
	}
	defer searcher.Close()

	d, err := chamfer.BuildDArray(searcher, fromReader)
	if err != nil {
		return 0, err
	}

	resolvedK := k
	if resolvedK == 0 {
		resolvedK = chamfer.DefaultSampleCount(int(fromReader.N()))
	}

	rnd := rand.New(rand.NewSource(seed))
	weights := chamfer.NewDArrayWeightSource(d).Weights()
	estimate, err := chamfer.DirectionalEstimate(searcher, fromReader, weights, resolvedK, rnd)
	if err != nil {
		return 0, err
	}

	if verbose {
		log.Infow("directional estimate", "from", fromDir, "to", toDir, "k", resolvedK, "estimate", estimate)
	}

	return estimate, nil
}

func relativeError(estimate, truth float64) float64 {
	if truth == 0 {
		if estimate == 0 {
			return 0
		}
		return 1
	}
	diff := estimate - truth
	if diff < 0 {
		diff = -diff
	}
	return diff / truth
}
