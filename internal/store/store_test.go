package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/abdusco/shortly/internal"
	"github.com/abdusco/shortly/internal/db"
	"github.com/abdusco/shortly/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbInstance, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbInstance.Close() })

	return store.New(dbInstance, "http://localhost:8080")
}

func TestCreate_GeneratesID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	link, err := s.Create(ctx, "https://example.com/very/long/path", "")
	require.NoError(t, err)

	assert.Len(t, link.ID, 6)
	for _, char := range link.ID {
		assert.Contains(t, idCharset, string(char))
	}
	assert.Equal(t, "https://example.com/very/long/path", link.OriginalURL)
	assert.Equal(t, "http://localhost:8080/"+link.ID, link.ShortURL)
	assert.Equal(t, int64(0), link.Clicks)
	assert.Empty(t, link.Alias)
	assert.False(t, link.CreatedAt.Time().IsZero())

	resolved, err := s.Resolve(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/very/long/path", resolved.OriginalURL)
	assert.Equal(t, int64(1), resolved.Clicks)
}

func TestCreate_WithAlias(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	link, err := s.Create(ctx, "https://example.com", "docs")
	require.NoError(t, err)

	assert.Equal(t, "docs", link.ID)
	assert.Equal(t, "docs", link.Alias)
	assert.Equal(t, "http://localhost:8080/docs", link.ShortURL)
}

func TestCreate_InvalidURL(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tests := []struct {
		name string
		url  string
	}{
		{"not a url", "not-a-url"},
		{"empty", ""},
		{"whitespace", "   "},
		{"relative path", "/relative/path"},
		{"missing host", "http://"},
		{"javascript scheme", "javascript:alert(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.url, "")
			assert.ErrorIs(t, err, internal.ErrInvalidURL)
		})
	}

	links, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestCreate_AliasTaken(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Create(ctx, "https://a.com", "docs")
	require.NoError(t, err)

	_, err = s.Create(ctx, "https://b.com", "docs")
	assert.ErrorIs(t, err, internal.ErrAliasTaken)

	links, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://a.com", links[0].OriginalURL)
}

func TestResolve_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Create(ctx, "https://example.com", "")
	require.NoError(t, err)

	_, err = s.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, internal.ErrLinkNotFound)

	links, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, int64(0), links[0].Clicks)
}

func TestResolve_IncrementsOnlyTarget(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.Create(ctx, "https://a.com", "")
	require.NoError(t, err)
	second, err := s.Create(ctx, "https://b.com", "")
	require.NoError(t, err)

	_, err = s.Resolve(ctx, first.ID)
	require.NoError(t, err)
	resolved, err := s.Resolve(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resolved.Clicks)

	links, err := s.List(ctx)
	require.NoError(t, err)
	for _, link := range links {
		if link.ID == second.ID {
			assert.Equal(t, int64(0), link.Clicks)
		}
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	link, err := s.Create(ctx, "https://example.com", "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, link.ID))

	_, err = s.Resolve(ctx, link.ID)
	assert.ErrorIs(t, err, internal.ErrLinkNotFound)

	// deleting an unknown id is a no-op
	require.NoError(t, s.Delete(ctx, "missing"))
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, alias := range []string{"first", "second", "third"} {
		_, err := s.Create(ctx, "https://example.com/"+alias, alias)
		require.NoError(t, err)
	}

	links, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "third", links[0].ID)
	assert.Equal(t, "second", links[1].ID)
	assert.Equal(t, "first", links[2].ID)
}

func TestRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "test.db")
	dbInstance, err := db.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { dbInstance.Close() })

	s := store.New(dbInstance, "http://localhost:8080")
	created, err := s.Create(ctx, "https://example.com", "docs")
	require.NoError(t, err)
	_, err = s.Resolve(ctx, created.ID)
	require.NoError(t, err)

	// a fresh store over the same database sees the persisted registry
	reopened := store.New(dbInstance, "http://localhost:8080")
	links, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "docs", links[0].ID)
	assert.Equal(t, "https://example.com", links[0].OriginalURL)
	assert.Equal(t, int64(1), links[0].Clicks)
	assert.Equal(t, created.CreatedAt.Time().Unix(), links[0].CreatedAt.Time().Unix())
}

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := store.GenerateID()
		assert.Len(t, id, 6)
		for _, char := range id {
			assert.Contains(t, idCharset, string(char))
		}
		seen[id] = true
	}
	// uniform 62^6 draws should not collide in 100 attempts
	assert.Greater(t, len(seen), 95, "generated ids look non-random")
}
