package gpudbn

import "math"

// Activation pairs a unit nonlinearity with its derivative expressed in
// terms of the activation value and the pre-activation input.
type Activation struct {
	Name string
	F    Transform  // f(x)
	DF   Transform2 // f'(x) given f(x) and x
}

// Unit activations used by the network layers.
var (
	SigmoidActivation  = Activation{Name: "sigmoid", F: Sigmoid, DF: DSigmoid}
	TanhActivation     = Activation{Name: "tanh", F: Tanh, DF: DTanh}
	IdentityActivation = Activation{Name: "identity", F: Identity, DF: DIdentity}
)

// Sigmoid computes 1 / (1 + exp(-x)). For large |x| it saturates to 0 or 1
// without overflowing.
func Sigmoid(x float32) float32 {
	if x >= 0 {
		return float32(1 / (1 + math.Exp(-float64(x))))
	}
	e := math.Exp(float64(x))
	return float32(e / (1 + e))
}

// DSigmoid is the sigmoid derivative given fx = Sigmoid(x).
func DSigmoid(fx, _ float32) float32 {
	return fx * (1 - fx)
}

// Tanh computes the hyperbolic tangent.
func Tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

// DTanh is the tanh derivative given fx = Tanh(x).
func DTanh(fx, _ float32) float32 {
	return 1 - fx*fx
}

// Identity returns x.
func Identity(x float32) float32 { return x }

// DIdentity returns 1.
func DIdentity(_, _ float32) float32 { return 1 }
