// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpudbn provides the kernel execution core of a GPU-style Deep Belief
// Network trainer running on CPU goroutines.
//
// Kernels are launched over a grid of blocks with CUDA indexing semantics.
// Every exported kernel method on Context is synchronous: it is ordered after
// all earlier launches on the context's default stream and returns only after
// its own launch has fully completed.
//
// Example usage:
//
//	ctx := gpudbn.NewContext()
//	defer ctx.Destroy()
//
//	s := gpudbn.Strategy{Kind: gpudbn.Plain, BlockSize: 16}
//	c := make([]float32, hA*wB)
//	if err := ctx.Multiply(s, c, a, b, hA, wA, hB, wB); err != nil {
//		return err
//	}
//
// Subpackages:
//   - xorshift7: the XorShift7 generator with GF(2) jump-ahead and parallel
//     stream generation
//   - dispatch: network passes composed from the kernels here
package gpudbn
