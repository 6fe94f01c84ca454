package shortlink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/abdusco/shortlink/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_RedirectCountsClick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")

	link, err := f.service.Create(ctx, owner.ID, CreateParams{OriginalURL: "https://example.com/a"})
	require.NoError(t, err)

	res, err := f.resolver.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, Redirect, res.Outcome)
	assert.Equal(t, "https://example.com/a", res.Target)

	stored, err := f.links.GetByCode(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Clicks)
}

func TestResolve_NotFound(t *testing.T) {
	f := newFixture(t)

	for _, code := range []string{"missing", "not a code", ""} {
		res, err := f.resolver.Resolve(context.Background(), code)
		require.NoError(t, err)
		assert.Equal(t, NotFound, res.Outcome, code)
	}
}

func TestResolve_ExpiredIsNotCounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")

	past := time.Now().Add(-time.Minute)
	link, err := f.service.Create(ctx, owner.ID, CreateParams{
		OriginalURL: "https://example.com/old",
		ExpiresAt:   &past,
	})
	require.NoError(t, err)

	res, err := f.resolver.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, Expired, res.Outcome)
	assert.Empty(t, res.Target)

	stored, err := f.links.GetByCode(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Zero(t, stored.Clicks)
}

func TestResolve_ExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")

	expiresAt := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	link, err := f.service.Create(ctx, owner.ID, CreateParams{
		OriginalURL: "https://example.com/edge",
		ExpiresAt:   &expiresAt,
	})
	require.NoError(t, err)

	f.resolver.now = func() time.Time { return expiresAt }
	res, err := f.resolver.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, Redirect, res.Outcome, "a link expiring exactly now is still live")

	f.resolver.now = func() time.Time { return expiresAt.Add(time.Second) }
	res, err = f.resolver.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, Expired, res.Outcome)
}

func TestResolve_ConcurrentClicks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a@example.com")

	link, err := f.service.Create(ctx, owner.ID, CreateParams{OriginalURL: "https://example.com/hot"})
	require.NoError(t, err)

	const n = 40
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.resolver.Resolve(ctx, link.ShortCode)
			assert.NoError(t, err)
			assert.Equal(t, Redirect, res.Outcome)
		}()
	}
	wg.Wait()

	stored, err := f.links.GetByCode(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, int64(n), stored.Clicks)
}

type vanishingStore struct {
	link *internal.ShortLink
}

func (s *vanishingStore) GetByCode(context.Context, string) (*internal.ShortLink, error) {
	return s.link, nil
}

func (s *vanishingStore) IncrementClicks(context.Context, string) (bool, error) {
	return false, nil
}

func TestResolve_DeletedDuringResolution(t *testing.T) {
	store := &vanishingStore{link: &internal.ShortLink{ID: "1", ShortCode: "gone", OriginalURL: "https://example.com"}}
	r := NewResolver(store, "https", "example.org")

	res, err := r.Resolve(context.Background(), "gone")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Outcome)
}

func TestResolver_Target(t *testing.T) {
	r := NewResolver(nil, "https", "example.org")

	tests := map[string]string{
		"https://example.com/a": "https://example.com/a",
		"HTTP://Example.com":    "HTTP://Example.com",
		"ftp://files.example":   "ftp://files.example",
		"/docs":                 "https://example.org/docs",
		"docs":                  "https://example.org/docs",
		"/a/b?c=d":              "https://example.org/a/b?c=d",
	}

	for input, want := range tests {
		assert.Equal(t, want, r.Target(input), input)
	}
}
