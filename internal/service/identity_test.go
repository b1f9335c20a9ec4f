package service

import (
	"context"
	"errors"
	"testing"
)

func TestContextIdentity(t *testing.T) {
	var resolver IdentityResolver = ContextIdentity{}

	if _, err := resolver.CurrentUserID(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("CurrentUserID() without user error = %v, want ErrUnauthenticated", err)
	}
	if _, err := resolver.CurrentUserID(WithUserID(context.Background(), 0)); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("CurrentUserID() with zero id error = %v, want ErrUnauthenticated", err)
	}

	id, err := resolver.CurrentUserID(WithUserID(context.Background(), 7))
	if err != nil || id != 7 {
		t.Errorf("CurrentUserID() = %d, %v; want 7, nil", id, err)
	}
}
