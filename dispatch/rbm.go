package dispatch

import (
	"fmt"

	"github.com/LynnColeArt/gpudbn"
	"github.com/LynnColeArt/gpudbn/xorshift7"
)

// Sampler hands out uniform draws from one XorShift7 stream, generated in
// parallel. Successive calls continue the stream where the previous call
// ended. A Sampler is not safe for concurrent use.
type Sampler struct {
	ctx     *gpudbn.Context
	table   *xorshift7.JumpTable
	state   [xorshift7.StateWords]uint32
	threads int
}

// NewSampler creates a sampler seeded from seed, generating with threads
// parallel streams per call.
func NewSampler(ctx *gpudbn.Context, seed uint32, threads int) (*Sampler, error) {
	if threads < 1 {
		return nil, gpudbn.NewInvalidArgError("NewSampler", fmt.Sprintf("threads %d must be positive", threads))
	}
	return &Sampler{
		ctx:     ctx,
		table:   xorshift7.DefaultJumpTable(),
		state:   xorshift7.StartState(seed),
		threads: threads,
	}, nil
}

// Uniform returns n draws in [0, 1).
func (s *Sampler) Uniform(n int) ([]float32, error) {
	if n == 0 {
		return nil, nil
	}
	cfg := xorshift7.Config{NumRuns: 1, NumThreads: s.threads, NumSteps: gpudbn.GridFor(n, s.threads)}
	out := make([]float32, cfg.RunLength())
	if err := xorshift7.Generate(s.ctx, cfg, s.state, s.table, out, xorshift7.UnitFloat32); err != nil {
		return nil, err
	}
	next, err := xorshift7.JumpAhead(s.state, s.table, uint64(cfg.RunLength()))
	if err != nil {
		return nil, err
	}
	s.state = next
	return out[:n], nil
}

// RBM is a restricted Boltzmann machine with sigmoid units. Weights is
// Hidden x Visible row-major. With Bias set, unit 0 of each side is a bias
// unit clamped to 1.
type RBM struct {
	Weights []float32
	Hidden  int
	Visible int
	Bias    bool
}

// HiddenProbabilities computes sigmoid(W·v).
func (r RBM) HiddenProbabilities(ctx *gpudbn.Context, v []float32) ([]float32, error) {
	h := make([]float32, r.Hidden)
	if err := ctx.MultiplyVectorByMatrixAndTransform(h, r.Weights, v, r.Hidden, r.Visible, gpudbn.Sigmoid); err != nil {
		return nil, err
	}
	return h, r.clampBias(ctx, h)
}

// VisibleProbabilities computes sigmoid(Wᵗ·h).
func (r RBM) VisibleProbabilities(ctx *gpudbn.Context, h []float32) ([]float32, error) {
	v := make([]float32, r.Visible)
	if err := ctx.MultiplyVectorByTransposeOfMatrixAndTransform(v, r.Weights, h, r.Hidden, r.Visible, gpudbn.Sigmoid); err != nil {
		return nil, err
	}
	return v, r.clampBias(ctx, v)
}

// SampleHidden returns the hidden probabilities given v and a Bernoulli
// sample of the hidden units drawn from them.
func (r RBM) SampleHidden(ctx *gpudbn.Context, s *Sampler, v []float32) (prob, sample []float32, err error) {
	if prob, err = r.HiddenProbabilities(ctx, v); err != nil {
		return nil, nil, err
	}
	sample, err = r.sample(ctx, s, prob)
	return prob, sample, err
}

// SampleVisible returns the visible probabilities given h and a Bernoulli
// sample drawn from them.
func (r RBM) SampleVisible(ctx *gpudbn.Context, s *Sampler, h []float32) (prob, sample []float32, err error) {
	if prob, err = r.VisibleProbabilities(ctx, h); err != nil {
		return nil, nil, err
	}
	sample, err = r.sample(ctx, s, prob)
	return prob, sample, err
}

// ContrastiveDivergence returns the CD-1 weight gradient for one visible
// vector: h0ᵖ⊗v0 - h1ᵖ⊗v1ᵖ, where h0 is sampled from v0, v1ᵖ is the
// reconstruction from h0 and h1ᵖ the hidden probabilities of v1ᵖ.
func (r RBM) ContrastiveDivergence(ctx *gpudbn.Context, s *Sampler, v0 []float32) ([]float32, error) {
	h0p, h0, err := r.SampleHidden(ctx, s, v0)
	if err != nil {
		return nil, err
	}
	v1p, err := r.VisibleProbabilities(ctx, h0)
	if err != nil {
		return nil, err
	}
	h1p, err := r.HiddenProbabilities(ctx, v1p)
	if err != nil {
		return nil, err
	}

	positive := make([]float32, r.Hidden*r.Visible)
	negative := make([]float32, r.Hidden*r.Visible)
	if err := ctx.OuterProduct(positive, h0p, v0); err != nil {
		return nil, err
	}
	if err := ctx.OuterProduct(negative, h1p, v1p); err != nil {
		return nil, err
	}
	if err := ctx.PointwiseSubtract(positive, positive, negative); err != nil {
		return nil, err
	}
	return positive, nil
}

func (r RBM) sample(ctx *gpudbn.Context, s *Sampler, prob []float32) ([]float32, error) {
	draws, err := s.Uniform(len(prob))
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(prob))
	if err := ctx.Activate(out, prob, draws, nil); err != nil {
		return nil, err
	}
	return out, r.clampBias(ctx, out)
}

func (r RBM) clampBias(ctx *gpudbn.Context, units []float32) error {
	if !r.Bias || len(units) == 0 {
		return nil
	}
	return ctx.Coerce(units, 0, 0, 1)
}
