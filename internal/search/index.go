// Package search provides a token index over registry documents backed
// by roaring bitmaps.
//
// Tokens are drawn from a document's logical path segments, its object
// keys, and its string leaf values. A query matches a document when
// every query token appears in the document's token set.
package search

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/docket/internal/registry"
)

// Index maps lowercased tokens to the set of documents containing them.
// Document ids are positions in the paths slice, so bitmap iteration
// yields results in the order the documents were indexed.
type Index struct {
	paths  []string
	tokens map[string]*roaring.Bitmap
}

// Build tokenizes every document and assembles the token index.
func Build(docs []*registry.Document) *Index {
	ix := &Index{
		paths:  make([]string, len(docs)),
		tokens: make(map[string]*roaring.Bitmap),
	}
	for i, doc := range docs {
		ix.paths[i] = doc.Path
		seen := make(map[string]struct{})
		for _, tok := range tokenize(doc.Path) {
			seen[tok] = struct{}{}
		}
		collectTokens(doc.Value, seen)
		for tok := range seen {
			b, ok := ix.tokens[tok]
			if !ok {
				b = roaring.New()
				ix.tokens[tok] = b
			}
			b.Add(uint32(i))
		}
	}
	return ix
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.paths) }

// Search returns the logical paths of documents containing every token
// of the query, in indexing order. A query with no usable tokens
// matches nothing.
func (ix *Index) Search(query string) []string {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}
	var result *roaring.Bitmap
	for _, term := range terms {
		b, ok := ix.tokens[term]
		if !ok {
			return nil
		}
		if result == nil {
			result = b.Clone()
		} else {
			result.And(b)
		}
	}
	matches := make([]string, 0, result.GetCardinality())
	iter := result.Iterator()
	for iter.HasNext() {
		matches = append(matches, ix.paths[iter.Next()])
	}
	return matches
}

// collectTokens walks a decoded JSON value and records tokens from
// object keys and string leaves.
func collectTokens(v any, seen map[string]struct{}) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			for _, tok := range tokenize(k) {
				seen[tok] = struct{}{}
			}
			collectTokens(child, seen)
		}
	case []any:
		for _, child := range val {
			collectTokens(child, seen)
		}
	case string:
		for _, tok := range tokenize(val) {
			seen[tok] = struct{}{}
		}
	}
}

// tokenize lowercases s and splits it on every non-alphanumeric rune,
// dropping tokens shorter than two runes.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	toks := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			toks = append(toks, f)
		}
	}
	return toks
}

// Cache memoizes the index per registry generation so rebuilds happen
// only when a rescan publishes a new snapshot.
type Cache struct {
	reg *registry.Registry

	mu  sync.Mutex
	gen string
	ix  *Index
}

// NewCache returns a cache over reg's current snapshot.
func NewCache(reg *registry.Registry) *Cache {
	return &Cache{reg: reg}
}

// Index returns the index for the registry's current snapshot,
// rebuilding it when the generation has moved. List runs first so an
// auto-reload rescan settles before the generation is read.
func (c *Cache) Index(ctx context.Context) (*Index, error) {
	docs, err := c.reg.List(ctx)
	if err != nil {
		return nil, err
	}
	gen := c.reg.Generation()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ix == nil || c.gen != gen {
		c.ix = Build(docs)
		c.gen = gen
	}
	return c.ix, nil
}
