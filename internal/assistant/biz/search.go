package biz

import (
	"context"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/naughty-assistant/internal/assistant/metrics"
	"github.com/kart-io/naughty-assistant/internal/assistant/store"
)

// KnowledgeSearcher finds knowledge entries containing a query.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Searcher renders knowledge search results behind a read-through cache.
type Searcher struct {
	knowledge KnowledgeSearcher
	cache     *SearchCache
	metrics   *metrics.Metrics
}

// NewSearcher creates a searcher. cache and m may be nil.
func NewSearcher(knowledge KnowledgeSearcher, cache *SearchCache, m *metrics.Metrics) *Searcher {
	return &Searcher{knowledge: knowledge, cache: cache, metrics: m}
}

// Search returns the results rendered as a quoted list, or the no-match
// sentinel.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	if !s.cache.Enabled() {
		s.metrics.RecordSearch(metrics.CacheDisabled)
		return s.search(ctx, query)
	}

	if cached, ok, err := s.cache.Get(ctx, query); err == nil && ok {
		s.metrics.RecordSearch(metrics.CacheHit)
		return cached, nil
	}
	s.metrics.RecordSearch(metrics.CacheMiss)

	rendered, err := s.search(ctx, query)
	if err != nil {
		return "", err
	}
	_ = s.cache.Set(ctx, query, rendered)
	return rendered, nil
}

func (s *Searcher) search(ctx context.Context, query string) (string, error) {
	results, err := s.knowledge.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return store.NoMatches, nil
	}
	return renderList(results), nil
}

// Invalidate drops cached results after the knowledge base changed.
func (s *Searcher) Invalidate(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		logger.Warnw("Failed to invalidate search cache", "error", err.Error())
	}
}

// renderList formats items like a Python list literal: ['a', "b'c"].
func renderList(items []string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quote(item))
	}
	sb.WriteByte(']')
	return sb.String()
}

// quote prefers single quotes, switching to double quotes when s holds a
// single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder
	sb.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(q):
			sb.WriteByte('\\')
			sb.WriteByte(q)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			sb.WriteString(`\x`)
			sb.WriteByte("0123456789abcdef"[r>>4])
			sb.WriteByte("0123456789abcdef"[r&0xf])
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}
