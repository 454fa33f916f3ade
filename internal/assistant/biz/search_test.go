package biz

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/naughty-assistant/internal/assistant/store"
)

func newTestCache(t *testing.T) (*SearchCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSearchCache(client, &SearchCacheConfig{
		Enabled:   true,
		TTL:       time.Minute,
		KeyPrefix: "test:search:",
	}), mr
}

func TestSearchCacheGetSet(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "Foo", "['x']"))
	got, ok, err := cache.Get(ctx, "FOO")
	require.NoError(t, err)
	assert.True(t, ok, "keys ignore query case")
	assert.Equal(t, "['x']", got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchCacheClear(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "1"))
	require.NoError(t, cache.Set(ctx, "b", "2"))
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, cache.Clear(ctx))
	assert.Len(t, mr.Keys(), 1)
	assert.True(t, mr.Exists("other:key"))
}

func TestSearchCacheDisabled(t *testing.T) {
	cache := NewSearchCache(nil, nil)
	assert.False(t, cache.Enabled())

	require.NoError(t, cache.Set(context.Background(), "q", "v"))
	_, ok, err := cache.Get(context.Background(), "q")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearcherSentinelAndMatch(t *testing.T) {
	dir := t.TempDir()
	s := NewSearcher(store.NewKnowledge(dir, nil), nil, nil)
	ctx := context.Background()

	out, err := s.Search(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, store.NoMatches, out)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.txt"), []byte("all about foo"), 0o644))
	out, err = s.Search(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "['Found in foo.txt: all about foo...']", out)
}

func TestSearcherReadThroughCache(t *testing.T) {
	dir := t.TempDir()
	cache, _ := newTestCache(t)
	s := NewSearcher(store.NewKnowledge(dir, nil), cache, nil)
	ctx := context.Background()

	out, err := s.Search(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, store.NoMatches, out)

	// 进程外写入在失效前返回旧结果，由目录监听负责失效
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.txt"), []byte("foo"), 0o644))
	out, err = s.Search(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, store.NoMatches, out)

	s.Invalidate(ctx)
	out, err = s.Search(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "['Found in foo.txt: foo...']", out)
}

func TestRenderList(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"single", []string{"a"}, "['a']"},
		{"many", []string{"a", "b"}, "['a', 'b']"},
		{"apostrophe", []string{"it's"}, `["it's"]`},
		{"both quotes", []string{`it's "x"`}, `['it\'s "x"']`},
		{"newline", []string{"a\nb"}, `['a\nb']`},
		{"backslash", []string{`a\b`}, `['a\\b']`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderList(tt.items))
		})
	}
}
