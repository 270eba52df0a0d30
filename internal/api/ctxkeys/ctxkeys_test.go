package ctxkeys

import (
	"context"
	"testing"
)

func TestWithValue_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), UserID, "op-1")
	got, ok := ctx.Value(UserID).(string)
	if !ok || got != "op-1" {
		t.Errorf("expected op-1, got %q (ok=%v)", got, ok)
	}
}

func TestKey_TypedKeysDoNotCollideWithStrings(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "user_id", "plain-string") //nolint:staticcheck
	if v := ctx.Value(UserID); v != nil {
		t.Errorf("typed key must not read a plain string key, got %v", v)
	}
}
