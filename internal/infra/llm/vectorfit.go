// Package llm — embedding dimension fitting.
// Different backends emit different native dimensionalities (e.g. 1024 vs
// 768) while the vector index is built once against a fixed dimension, so
// every embedding — for indexing or querying — passes through FitDimension.
package llm

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// FitDimension returns vec adjusted to exactly targetDim entries: truncated
// when longer, zero-padded when shorter, returned unchanged when equal or
// when targetDim is not positive. Truncation is lossy by construction; this
// is a plain cut, not a learned projection.
func FitDimension(vec []float32, targetDim int) []float32 {
	if targetDim <= 0 || len(vec) == targetDim {
		return vec
	}
	out := make([]float32, targetDim)
	copy(out, vec)
	return out
}

// dimLogOnce gates the one-time "observed embedding dimension" diagnostic.
// Written at most once per process lifetime; a duplicate line under racing
// first requests would be harmless, sync.Once just makes the state explicit.
var dimLogOnce sync.Once

// logObservedDimension records the first native embedding dimension seen.
func logObservedDimension(provider string, native, target int) {
	dimLogOnce.Do(func() {
		log.Info().
			Str("provider", provider).
			Int("native_dim", native).
			Int("target_dim", target).
			Msg("observed embedding dimension")
	})
}
