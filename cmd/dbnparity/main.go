// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dbnparity runs every gpudbn kernel against its sequential
// reference and reports the numerical agreement.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/LynnColeArt/gpudbn"
	"github.com/LynnColeArt/gpudbn/xorshift7"
)

// checkReport is the JSON form of one parity result.
type checkReport struct {
	Name        string        `json:"name"`
	Passed      bool          `json:"passed"`
	Error       string        `json:"error,omitempty"`
	MaxAbsError float32       `json:"max_abs_error"`
	MaxULPError int           `json:"max_ulp_error"`
	NumErrors   int           `json:"num_errors"`
	Duration    time.Duration `json:"duration_ns"`
}

func main() {
	var (
		seed       = flag.Uint64("seed", 12345, "Seed for generated operands")
		tile       = flag.Int("tile", gpudbn.DefaultTileSize, "Tile edge of the tiled multiply")
		vectorBS   = flag.Int("vbs", gpudbn.DefaultVectorBlockSize, "Block size of the vector-matrix kernels")
		workers    = flag.Int("workers", runtime.NumCPU(), "Worker goroutines per launch")
		outputFile = flag.String("output", "", "Write results as JSON to this file")
		verbose    = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	dev := gpudbn.GetDevice()
	fmt.Println("=== gpudbn kernel parity ===")
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("Device: %s, %d cores\n", dev.Name, dev.NumCores)
	fmt.Printf("%s (best: %s, compiler may fuse multiply-add: %v)\n",
		dev.Features, dev.Features.Best(), dev.Features.MayFuseMultiplyAdd())
	if v, sum := gpudbn.Version(); v != "" {
		fmt.Printf("gpudbn %s %s\n", v, sum)
	}

	ctx := gpudbn.NewContext(
		gpudbn.WithWorkers(*workers),
		gpudbn.WithTileSize(*tile),
		gpudbn.WithVectorBlockSize(*vectorBS),
	)
	defer ctx.Destroy()

	var checks []gpudbn.ParityCheck
	checks = append(checks, multiplyChecks(ctx, *seed)...)
	checks = append(checks, vectorChecks(ctx, *seed)...)
	checks = append(checks, elementwiseChecks(ctx, *seed)...)
	checks = append(checks, streamCheck(ctx))

	reports := make([]checkReport, 0, len(checks))
	results := make([]gpudbn.ParityResult, 0, len(checks))
	for _, c := range checks {
		start := time.Now()
		res, err := c.Run()
		elapsed := time.Since(start)
		r := gpudbn.ParityResult{Name: c.Name, Result: res, Error: err}
		results = append(results, r)

		rep := checkReport{
			Name:        r.Name,
			Passed:      r.Error == nil,
			MaxAbsError: r.Result.MaxAbsError,
			MaxULPError: r.Result.MaxULPError,
			NumErrors:   r.Result.NumErrors,
			Duration:    elapsed,
		}
		if f := float64(rep.MaxAbsError); math.IsInf(f, 0) || math.IsNaN(f) {
			// not representable in JSON
			rep.MaxAbsError = -1
		}
		if r.Error != nil {
			rep.Error = r.Error.Error()
			log.Printf("FAIL %s: %v", r.Name, r.Error)
		} else if *verbose {
			log.Printf("ok   %s (%v, max ULP %d)", r.Name, elapsed, r.Result.MaxULPError)
		}
		reports = append(reports, rep)
	}

	fmt.Println(gpudbn.Summary(results))

	if *outputFile != "" {
		if err := writeReports(*outputFile, reports); err != nil {
			log.Fatalf("Failed to write results: %v", err)
		}
		fmt.Printf("Results saved to %s\n", *outputFile)
	}

	for _, r := range results {
		if r.Error != nil {
			os.Exit(1)
		}
	}
}

func writeReports(path string, reports []checkReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func multiplyChecks(ctx *gpudbn.Context, seed uint64) []gpudbn.ParityCheck {
	var ref gpudbn.Reference
	tol := gpudbn.GetOperationTolerance("multiply")
	bs := ctx.TileSize()

	var checks []gpudbn.ParityCheck
	for _, kind := range []gpudbn.StrategyKind{gpudbn.Plain, gpudbn.MultiplyByTranspose, gpudbn.TransposeAndMultiply} {
		for i, shape := range gpudbn.MultiplyShapes() {
			m, k, n := shape[0]*bs, shape[1]*bs, shape[2]*bs
			hA, wA, hB, wB := m, k, k, n
			switch kind {
			case gpudbn.MultiplyByTranspose:
				hB, wB = n, k
			case gpudbn.TransposeAndMultiply:
				hA, wA, hB, wB = k, m, k, n
			}
			a := gpudbn.GenerateMatrixFloat32(hA, wA, seed+uint64(i))
			b := gpudbn.GenerateMatrixFloat32(hB, wB, seed+uint64(100+i))
			checks = append(checks, gpudbn.ParityCheck{
				Name:      fmt.Sprintf("%v %dx%dx%d", kind, m, k, n),
				Reference: func() []float32 { return ref.Multiply(kind, a, b, hA, wA, hB, wB) },
				Accelerated: func() ([]float32, error) {
					c, _, _, err := ctx.MultiplyInto(ctx.Strategy(kind), a, b, hA, wA, hB, wB)
					return c, err
				},
				Tolerance: tol,
			})
		}
	}
	return checks
}

func vectorChecks(ctx *gpudbn.Context, seed uint64) []gpudbn.ParityCheck {
	var ref gpudbn.Reference
	tol := gpudbn.GetOperationTolerance("vecmat")

	var checks []gpudbn.ParityCheck
	for i, shape := range gpudbn.VectorSizes() {
		hA, wA := shape[0], shape[1]
		a := gpudbn.GenerateMatrixFloat32(hA, wA, seed+uint64(i))
		x := gpudbn.GenerateFloat32Range(wA, seed+uint64(50+i), -1, 1)
		xt := gpudbn.GenerateFloat32Range(hA, seed+uint64(90+i), -1, 1)
		checks = append(checks,
			gpudbn.ParityCheck{
				Name:      fmt.Sprintf("sigmoid(A·x) %dx%d", hA, wA),
				Reference: func() []float32 { return ref.Map(ref.MultiplyVectorByMatrix(a, x, hA, wA), gpudbn.Sigmoid) },
				Accelerated: func() ([]float32, error) {
					y := make([]float32, hA)
					return y, ctx.MultiplyVectorByMatrixAndTransform(y, a, x, hA, wA, gpudbn.Sigmoid)
				},
				Tolerance: tol,
			},
			gpudbn.ParityCheck{
				Name:      fmt.Sprintf("Aᵗ·x %dx%d", hA, wA),
				Reference: func() []float32 { return ref.MultiplyVectorByTransposeOfMatrix(a, xt, hA, wA) },
				Accelerated: func() ([]float32, error) {
					y := make([]float32, wA)
					return y, ctx.MultiplyVectorByTransposeOfMatrix(y, a, xt, hA, wA)
				},
				Tolerance: tol,
			},
		)
	}
	return checks
}

func elementwiseChecks(ctx *gpudbn.Context, seed uint64) []gpudbn.ParityCheck {
	var ref gpudbn.Reference
	tol := gpudbn.GetOperationTolerance("elementwise")
	const n = 10007
	lhs := gpudbn.GenerateFloat32Range(n, seed, -4, 4)
	rhs := gpudbn.GenerateFloat32Range(n, seed+1, -4, 4)
	draws := gpudbn.GenerateFloat32(n, seed+2)

	return []gpudbn.ParityCheck{
		{
			Name:      "Activate",
			Reference: func() []float32 { return ref.Activate(lhs, draws, gpudbn.Sigmoid) },
			Accelerated: func() ([]float32, error) {
				out := make([]float32, n)
				return out, ctx.Activate(out, lhs, draws, gpudbn.Sigmoid)
			},
			Tolerance: tol,
		},
		{
			Name:      "Transform",
			Reference: func() []float32 { return ref.Transform(lhs, 100, n-200, gpudbn.Tanh) },
			Accelerated: func() ([]float32, error) {
				out := make([]float32, n)
				return out, ctx.Transform(out, lhs, 100, n-200, gpudbn.Tanh)
			},
			Tolerance: tol,
		},
		{
			Name:      "PointwiseMultiply",
			Reference: func() []float32 { return ref.PointwiseBinary(gpudbn.Multiply, lhs, rhs) },
			Accelerated: func() ([]float32, error) {
				out := make([]float32, n)
				return out, ctx.PointwiseMultiply(out, lhs, rhs)
			},
			Tolerance: tol,
		},
		{
			Name:      "OuterProduct",
			Reference: func() []float32 { return ref.OuterProduct(lhs[:97], rhs[:89]) },
			Accelerated: func() ([]float32, error) {
				out := make([]float32, 97*89)
				return out, ctx.OuterProduct(out, lhs[:97], rhs[:89])
			},
			Tolerance: tol,
		},
	}
}

// streamCheck verifies that parallel generation reproduces the sequential
// XorShift7 stream element for element.
func streamCheck(ctx *gpudbn.Context) gpudbn.ParityCheck {
	cfg := xorshift7.Config{NumRuns: 2, NumThreads: 1000, NumSteps: 32}
	start := xorshift7.StartState(2024)
	return gpudbn.ParityCheck{
		Name: "xorshift7 partition",
		Reference: func() []float32 {
			seq := xorshift7.Stream(start, cfg.NumRuns*cfg.RunLength())
			out := make([]float32, len(seq))
			for r := 0; r < cfg.NumRuns; r++ {
				for t := 0; t < cfg.NumThreads; t++ {
					rank := r*cfg.NumThreads + t
					for i := 0; i < cfg.NumSteps; i++ {
						out[r*cfg.RunLength()+i*cfg.NumThreads+t] = xorshift7.UnitFloat32(seq[rank*cfg.NumSteps+i])
					}
				}
			}
			return out
		},
		Accelerated: func() ([]float32, error) {
			out := make([]float32, cfg.NumRuns*cfg.RunLength())
			return out, xorshift7.GenerateAll(ctx, cfg, start, xorshift7.DefaultJumpTable(), out, xorshift7.UnitFloat32)
		},
		Tolerance: gpudbn.StrictTolerance(),
	}
}
