// Package dispatch maps network layers onto gpudbn kernel launches:
// feed-forward passes, backpropagated error signals and weight gradients.
// It holds no training state; epoch scheduling and weight updates belong to
// the caller.
package dispatch

import (
	"fmt"

	"github.com/LynnColeArt/gpudbn"
)

// Layer is one fully connected layer computing f(W·x). Weights is Height x
// Width row-major, Width being the size of the layer input.
type Layer struct {
	Weights    []float32
	Height     int
	Width      int
	Activation gpudbn.Activation

	// Bias marks output unit 0 as a bias unit for the next layer: it is
	// fixed to 1 with a zero derivative.
	Bias bool
}

func (l Layer) validate(op string, i int) error {
	if l.Activation.F == nil || l.Activation.DF == nil {
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("layer %d: activation %q incomplete", i, l.Activation.Name))
	}
	if l.Height < 0 || l.Width < 0 || len(l.Weights) != l.Height*l.Width {
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("layer %d: %d weights for %dx%d", i, len(l.Weights), l.Height, l.Width))
	}
	if l.Bias && l.Height == 0 {
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("layer %d: bias unit on empty layer", i))
	}
	return nil
}

func validateChain(op string, layers []Layer, inputLen int) error {
	if len(layers) == 0 {
		return gpudbn.NewInvalidArgError(op, "no layers")
	}
	want := inputLen
	for i, l := range layers {
		if err := l.validate(op, i); err != nil {
			return err
		}
		if l.Width != want {
			return gpudbn.NewInvalidArgError(op, fmt.Sprintf("layer %d: width %d, previous output has %d units", i, l.Width, want))
		}
		want = l.Height
	}
	return nil
}

// Activations records a forward pass: the output of every layer and the
// activation derivative at that output.
type Activations struct {
	Outputs     [][]float32
	Derivatives [][]float32
}

// Output returns the output of the last layer.
func (a *Activations) Output() []float32 {
	return a.Outputs[len(a.Outputs)-1]
}

// FeedForward runs input through layers, storing each layer's activation
// and derivative in one fused vector-matrix launch per layer.
func FeedForward(ctx *gpudbn.Context, layers []Layer, input []float32) (*Activations, error) {
	const op = "FeedForward"
	if err := validateChain(op, layers, len(input)); err != nil {
		return nil, err
	}
	acts := &Activations{
		Outputs:     make([][]float32, len(layers)),
		Derivatives: make([][]float32, len(layers)),
	}
	x := input
	for i, l := range layers {
		out := make([]float32, l.Height)
		deriv := make([]float32, l.Height)
		if err := ctx.MultiplyVectorByMatrixAndTransformTwice(out, deriv, l.Weights, x, l.Height, l.Width, l.Activation.F, l.Activation.DF); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if l.Bias {
			if err := fixBias(ctx, out, deriv); err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
		}
		acts.Outputs[i] = out
		acts.Derivatives[i] = deriv
		x = out
	}
	return acts, nil
}

func fixBias(ctx *gpudbn.Context, out, deriv []float32) error {
	if err := ctx.Coerce(out, 0, 0, 1); err != nil {
		return err
	}
	return ctx.Coerce(deriv, 0, 0, 0)
}

// ErrorSignals backpropagates outputError, the loss gradient at the network
// output, and returns the delta of every layer:
//
//	δ_L = outputError ⊙ f'_L
//	δ_l = (W_{l+1}ᵗ·δ_{l+1}) ⊙ f'_l
func ErrorSignals(ctx *gpudbn.Context, layers []Layer, acts *Activations, outputError []float32) ([][]float32, error) {
	const op = "ErrorSignals"
	if err := checkActivations(op, layers, acts); err != nil {
		return nil, err
	}
	last := len(layers) - 1
	if len(outputError) != layers[last].Height {
		return nil, gpudbn.NewInvalidArgError(op, fmt.Sprintf("output error has %d units, last layer %d", len(outputError), layers[last].Height))
	}

	deltas := make([][]float32, len(layers))
	deltas[last] = make([]float32, layers[last].Height)
	if err := ctx.PointwiseMultiply(deltas[last], outputError, acts.Derivatives[last]); err != nil {
		return nil, err
	}
	for i := last - 1; i >= 0; i-- {
		next := layers[i+1]
		propagated := make([]float32, next.Width)
		if err := ctx.MultiplyVectorByTransposeOfMatrix(propagated, next.Weights, deltas[i+1], next.Height, next.Width); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		deltas[i] = make([]float32, layers[i].Height)
		if err := ctx.PointwiseMultiply(deltas[i], propagated, acts.Derivatives[i]); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return deltas, nil
}

// Gradients returns the weight gradient δ_l ⊗ x_l of every layer, x_0 being
// the network input and x_l the output of layer l-1.
func Gradients(ctx *gpudbn.Context, layers []Layer, acts *Activations, input []float32, deltas [][]float32) ([][]float32, error) {
	const op = "Gradients"
	if err := checkActivations(op, layers, acts); err != nil {
		return nil, err
	}
	if len(deltas) != len(layers) {
		return nil, gpudbn.NewInvalidArgError(op, fmt.Sprintf("%d deltas for %d layers", len(deltas), len(layers)))
	}
	grads := make([][]float32, len(layers))
	x := input
	for i, l := range layers {
		if len(deltas[i]) != l.Height || len(x) != l.Width {
			return nil, gpudbn.NewInvalidArgError(op, fmt.Sprintf("layer %d: delta %d / input %d for %dx%d", i, len(deltas[i]), len(x), l.Height, l.Width))
		}
		grads[i] = make([]float32, l.Height*l.Width)
		if err := ctx.OuterProduct(grads[i], deltas[i], x); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		x = acts.Outputs[i]
	}
	return grads, nil
}

// Accumulate adds every gradient of g into acc, layer by layer.
func Accumulate(ctx *gpudbn.Context, acc, g [][]float32) error {
	if len(acc) != len(g) {
		return gpudbn.NewInvalidArgError("Accumulate", fmt.Sprintf("%d accumulators for %d gradients", len(acc), len(g)))
	}
	for i := range g {
		if err := ctx.PointwiseAdd(acc[i], acc[i], g[i]); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

// Scale multiplies every gradient in place, e.g. by 1/batch.
func Scale(ctx *gpudbn.Context, g [][]float32, lambda float32) error {
	for i := range g {
		if err := ctx.ScalarMultiply(g[i], lambda); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

func checkActivations(op string, layers []Layer, acts *Activations) error {
	if len(layers) == 0 {
		return gpudbn.NewInvalidArgError(op, "no layers")
	}
	if acts == nil || len(acts.Outputs) != len(layers) || len(acts.Derivatives) != len(layers) {
		return gpudbn.NewInvalidArgError(op, "activations do not match layers")
	}
	return nil
}
