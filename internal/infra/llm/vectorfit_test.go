// Unit tests for embedding dimension fitting.
package llm

import "testing"

func TestFitDimension_ShorterVector_ZeroPads(t *testing.T) {
	t.Parallel()

	vec := []float32{0.1, 0.2, 0.3}
	out := FitDimension(vec, 8)
	if len(out) != 8 {
		t.Fatalf("expected length 8, got %d", len(out))
	}
	for i, v := range vec {
		if out[i] != v {
			t.Errorf("prefix[%d]: expected %v, got %v", i, v, out[i])
		}
	}
	for i := len(vec); i < 8; i++ {
		if out[i] != 0 {
			t.Errorf("padding[%d]: expected 0, got %v", i, out[i])
		}
	}
}

func TestFitDimension_LongerVector_Truncates(t *testing.T) {
	t.Parallel()

	vec := []float32{1, 2, 3, 4, 5}
	out := FitDimension(vec, 2)
	if len(out) != 2 {
		t.Fatalf("expected length 2, got %d", len(out))
	}
	if out[0] != 1 || out[1] != 2 {
		t.Errorf("expected prefix [1 2], got %v", out)
	}
}

func TestFitDimension_EqualLength_PassesThrough(t *testing.T) {
	t.Parallel()

	vec := []float32{1, 2, 3}
	out := FitDimension(vec, 3)
	if len(out) != 3 {
		t.Fatalf("expected length 3, got %d", len(out))
	}
	// pass-through, not a copy
	out[0] = 9
	if vec[0] != 9 {
		t.Error("expected equal-length input to be returned unchanged")
	}
}

func TestFitDimension_NonPositiveTarget_PassesThrough(t *testing.T) {
	t.Parallel()

	vec := []float32{1, 2}
	if out := FitDimension(vec, 0); len(out) != 2 {
		t.Errorf("expected untouched vector for targetDim 0, got len %d", len(out))
	}
	if out := FitDimension(vec, -5); len(out) != 2 {
		t.Errorf("expected untouched vector for negative targetDim, got len %d", len(out))
	}
}

func TestFitDimension_768To1024_TailIsZero(t *testing.T) {
	t.Parallel()

	vec := make([]float32, 768)
	for i := range vec {
		vec[i] = 0.5
	}
	out := FitDimension(vec, 1024)
	if len(out) != 1024 {
		t.Fatalf("expected length 1024, got %d", len(out))
	}
	for i := 768; i < 1024; i++ {
		if out[i] != 0 {
			t.Fatalf("tail[%d]: expected 0, got %v", i, out[i])
		}
	}
}
