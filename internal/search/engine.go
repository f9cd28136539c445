// Package search answers "which files contain any of these words" queries
// against the aggregate index.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/wordindex/internal/telemetry"
	"github.com/Aman-CERP/wordindex/internal/tokenize"
)

// DefaultCacheSize is the default number of query results to cache.
const DefaultCacheSize = 256

// Lookup is the read side of the index used by searches.
type Lookup interface {
	// UnionFiles adds the file ids of word to dst and reports whether word exists.
	UnionFiles(word string, dst map[string]struct{}) bool
	// Generation changes whenever the index contents may have changed.
	Generation() uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records every search on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// Engine runs union searches with an LRU result cache.
// Safe for concurrent use.
type Engine struct {
	idx     Lookup
	cache   *lru.Cache[string, []string] // nil when caching is disabled
	metrics *telemetry.Metrics
}

// New creates an engine over idx. A cacheSize of 0 uses DefaultCacheSize;
// a negative size disables caching.
func New(idx Lookup, cacheSize int, opts ...Option) *Engine {
	e := &Engine{idx: idx}

	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	if cacheSize > 0 {
		cache, _ := lru.New[string, []string](cacheSize)
		e.cache = cache
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// cacheKey ties a query to the index generation it was answered against.
func cacheKey(generation uint64, query string) string {
	return strconv.FormatUint(generation, 10) + "\x00" + query
}

// Search splits query with the indexing rule, drops tokens that are exactly
// a stop word, and returns the sorted union of the file sets of the remaining
// tokens. Tokens are looked up as written: unlike indexing, the query is not
// lower-cased, so "The" is kept as a term while "the" is dropped.
//
// Search never fails. If a lookup panics or ctx is done, the files collected
// so far are returned.
func (e *Engine) Search(ctx context.Context, query string) (files []string) {
	start := time.Now()
	key := cacheKey(e.idx.Generation(), query)

	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			e.metrics.ObserveSearch(true)
			return slices.Clone(cached)
		}
	}
	e.metrics.ObserveSearch(false)

	acc := make(map[string]struct{})
	complete := false

	defer func() {
		if r := recover(); r != nil {
			slog.Error("search_failed",
				slog.String("query", query),
				slog.String("error", fmt.Sprint(r)))
		}

		files = sortedFiles(acc)

		if complete && e.cache != nil {
			e.cache.Add(key, slices.Clone(files))
		}

		slog.Debug("search_complete",
			slog.String("query", query),
			slog.Int("results", len(files)),
			slog.Bool("complete", complete),
			slog.Int64("duration_us", time.Since(start).Microseconds()))
	}()

	for _, term := range Terms(query) {
		if ctx.Err() != nil {
			return nil
		}
		e.idx.UnionFiles(term, acc)
	}
	complete = true

	return nil
}

// Terms returns the lookup terms of query: split tokens minus empty tokens
// and exact stop words.
func Terms(query string) []string {
	tokens := tokenize.Split(query)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" || tokenize.IsStopWord(tok) {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// Purge drops every cached result.
func (e *Engine) Purge() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

func sortedFiles(set map[string]struct{}) []string {
	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
