package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{"tok": types.User{ID: "alice", Name: "Alice"}}

	u, err := r.CurrentUser(context.Background(), "tok")
	if err != nil {
		t.Fatalf("known token: %v", err)
	}
	if u.ID != "alice" {
		t.Fatalf("want alice, got %+v", u)
	}

	if _, err := r.CurrentUser(context.Background(), "nope"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("want ErrUnknownToken, got %v", err)
	}
	if _, err := r.CurrentUser(context.Background(), ""); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("empty token must not resolve, got %v", err)
	}
}
