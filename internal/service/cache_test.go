package service

import (
	"context"
	"errors"
	"testing"
)

func TestMemoizeWithinRequest(t *testing.T) {
	ctx := WithRequestCache(context.Background())
	calls := 0
	load := func() (int, error) {
		calls++
		return calls, nil
	}

	first, _ := memoize(ctx, "k:1:", load)
	second, _ := memoize(ctx, "k:1:", load)
	if first != 1 || second != 1 || calls != 1 {
		t.Errorf("memoize() = %d, %d after %d calls; want one load", first, second, calls)
	}

	invalidate(ctx, "k:1:")
	third, _ := memoize(ctx, "k:1:", load)
	if third != 2 {
		t.Errorf("after invalidate memoize() = %d, want a fresh load", third)
	}
}

func TestMemoizeDoesNotCacheErrors(t *testing.T) {
	ctx := WithRequestCache(context.Background())
	boom := errors.New("boom")
	calls := 0
	load := func() (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "ok", nil
	}

	if _, err := memoize(ctx, "k", load); !errors.Is(err, boom) {
		t.Fatalf("memoize() error = %v, want boom", err)
	}
	if v, err := memoize(ctx, "k", load); err != nil || v != "ok" {
		t.Errorf("memoize() = %q, %v; want ok", v, err)
	}
	if n := requestCache(ctx).Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestMemoizeWithoutCache(t *testing.T) {
	calls := 0
	load := func() (int, error) {
		calls++
		return calls, nil
	}
	memoize(context.Background(), "k", load)
	memoize(context.Background(), "k", load)
	if calls != 2 {
		t.Errorf("load called %d times, want 2 without a request cache", calls)
	}
}

func TestInvalidatePrefixIsolation(t *testing.T) {
	ctx := WithRequestCache(context.Background())
	memoize(ctx, tasksKey(1), func() (int, error) { return 1, nil })
	memoize(ctx, tasksKey(10), func() (int, error) { return 10, nil })

	invalidate(ctx, tasksKey(1))
	if n := requestCache(ctx).Len(); n != 1 {
		t.Errorf("invalidate(tasks:1:) left %d entries, want only user 10's", n)
	}
}

func TestRequestCacheSeparatesRequests(t *testing.T) {
	a := WithRequestCache(context.Background())
	b := WithRequestCache(context.Background())
	memoize(a, "k", func() (int, error) { return 1, nil })

	if n := requestCache(b).Len(); n != 0 {
		t.Errorf("second request sees %d cached entries", n)
	}
}
