package dispatch

import (
	"fmt"

	"github.com/LynnColeArt/gpudbn"
)

// Batched passes run on the tiled multiply executor. Operands are padded
// explicitly to the context tile size and the result is cut back, since the
// executor itself accepts block aligned dimensions only.

// FeedForwardBatch computes f(X·Wᵗ) for a batch x of batch rows of
// layer.Width inputs. The result is batch x layer.Height.
func FeedForwardBatch(ctx *gpudbn.Context, l Layer, x []float32, batch int) ([]float32, error) {
	const op = "FeedForwardBatch"
	if err := l.validate(op, 0); err != nil {
		return nil, err
	}
	z, err := paddedMultiply(ctx, gpudbn.MultiplyByTranspose, x, batch, l.Width, l.Weights, l.Height, l.Width)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(z))
	if err := ctx.Transform(out, z, 0, len(z), l.Activation.F); err != nil {
		return nil, err
	}
	if l.Bias {
		// bias unit is column 0 of every row
		if err := ctx.ActivateFirstColumn(out, batch, l.Height, batch); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// BatchGradient computes Δᵗ·X, the weight gradient summed over a batch:
// deltas is batch x height, inputs is batch x width and the result is
// height x width.
func BatchGradient(ctx *gpudbn.Context, deltas, inputs []float32, batch, height, width int) ([]float32, error) {
	return paddedMultiply(ctx, gpudbn.TransposeAndMultiply, deltas, batch, height, inputs, batch, width)
}

// Propagate computes X·W for a batch x (batch x hW) and weights w (hW x wW).
func Propagate(ctx *gpudbn.Context, x []float32, batch int, w []float32, hW, wW int) ([]float32, error) {
	return paddedMultiply(ctx, gpudbn.Plain, x, batch, hW, w, hW, wW)
}

func paddedMultiply(ctx *gpudbn.Context, kind gpudbn.StrategyKind, a []float32, hA, wA int, b []float32, hB, wB int) ([]float32, error) {
	// Shapes are checked unpadded: padding would hide an inner dimension
	// mismatch that rounds up to the same tile count.
	hC, wC, err := gpudbn.Strategy{Kind: kind, BlockSize: 1}.OutputShape(hA, wA, hB, wB)
	if err != nil {
		return nil, err
	}
	s := ctx.Strategy(kind)
	ap, hAp, wAp, err := gpudbn.PadMatrix(a, hA, wA, s.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", kind, err)
	}
	bp, hBp, wBp, err := gpudbn.PadMatrix(b, hB, wB, s.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", kind, err)
	}
	cp, hCp, wCp, err := ctx.MultiplyInto(s, ap, bp, hAp, wAp, hBp, wBp)
	if err != nil {
		return nil, err
	}
	return gpudbn.UnpadMatrix(cp, hCp, wCp, hC, wC)
}
