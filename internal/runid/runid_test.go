package runid

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	if !ok || got != id {
		t.Fatalf("expected %s from context, got %s ok=%v", id, got, ok)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run id %q is not a uuid: %v", id, err)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("unexpected id in empty context")
	}
}

func TestIDsAreDistinct(t *testing.T) {
	_, a := NewContext(context.Background())
	_, b := NewContext(context.Background())
	if a == b {
		t.Fatalf("two runs share id %s", a)
	}
}
