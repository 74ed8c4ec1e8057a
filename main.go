// Package main estimates a watermark shared by a set of images and finds it
// in other images.
// The pipeline works in the gradient domain:
// Estimate: the median of the image gradients across the corpus keeps the
// watermark gradient, which is constant, and drops the image content, which varies.
// Crop: threshold the gradient magnitude to find the watermark footprint.
// Reconstruct: solve the Poisson equation to turn the cropped gradients back
// into a watermark image (spectral DST solver or Jacobi relaxation).
// Detect: correlate a target's edge map with the watermark gradient magnitude
// and report the strongest response.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

func main() {
	// Read flags
	srcPath := flag.String("src", "", "sets the folder of watermarked images")
	dstPath := flag.String("dst", "", "sets the output folder")
	targetPath := flag.String("target", "", "optional image to locate the watermark in")
	debugFlag := flag.Bool("debug", false, "Debug logging level")
	configFilename := flag.String("config", "local.env.yaml", "Config File")
	flag.Parse()

	cfg, err := LoadConfig(*configFilename)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configFilename).Msg("reading config")
	}
	SetupLogging(cfg, *debugFlag)

	// Perform input validation
	if *srcPath == "" || *dstPath == "" {
		log.Fatal().Msg("src and dst are both required")
	}
	if err := os.MkdirAll(*dstPath, 0o755); err != nil {
		log.Fatal().Err(err).Str("dst", *dstPath).Msg("creating output folder")
	}

	if err := run(cfg, *srcPath, *dstPath, *targetPath); err != nil {
		log.Fatal().Err(err).Msg("watermark estimation failed")
	}
}

func run(cfg AppConfig, src, dst, target string) error {
	start := time.Now()

	est, outcomes, err := cfg.Estimator().EstimateWatermark(src)
	if err != nil {
		return err
	}
	skipped := 0
	for _, o := range outcomes {
		if o.Skipped() {
			skipped++
		}
	}

	wm, box, err := CropWatermark(est.Gradient, cfg.Crop.Threshold, cfg.Crop.BoundarySize)
	if err != nil {
		return err
	}

	perf := time.Now()
	rec, err := cfg.PoissonSolver().Solve(wm, nil)
	if err != nil {
		return err
	}
	log.Debug().
		Int64("duration(ms)", time.Since(perf).Milliseconds()).
		Str("solver", cfg.Solver.Method).
		Msg("reconstruction")

	out := filepath.Join(dst, "watermark.png")
	if err := WriteImage(out, rec, true); err != nil {
		return err
	}

	if target != "" {
		img, err := ReadImage(target)
		if err != nil {
			return err
		}
		res, err := cfg.Locator().Locate(img, wm)
		if err != nil {
			return err
		}

		base := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
		if err := WriteImage(filepath.Join(dst, "detect-"+base+".png"), res.Annotated, false); err != nil {
			return err
		}

		log.Info().
			Int("x", res.TopLeft.X).
			Int("y", res.TopLeft.Y).
			Int("width", res.Size.X).
			Int("height", res.Size.Y).
			Float64("score", res.Score).
			Msg(filepath.Base(target))
	}

	// Done
	log.Info().
		Int64("duration(ms)", time.Since(start).Milliseconds()).
		Int("images", len(est.GradX)).
		Int("skipped", skipped).
		Str("crop", box.String()).
		Str("dst", out).
		Msg(filepath.Base(src))

	return nil
}
