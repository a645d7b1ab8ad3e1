// Package search implements the in-memory full-text + geo + tag +
// status index of spec.md §4.5 (C6): one Document per Place, kept in
// sync with the repository by Reindex, queried through an IndexQuery.
//
// Grounded on the teacher's hand-rolled internal/query package for the
// tokenizer idiom (rune-scanning lexer rather than a regex or a
// third-party search-engine client: no corpus repo imports Bleve,
// Lucene-over-HTTP or similar, so the index stays a plain Go data
// structure behind a mutex, same as the teacher's in-process query
// engine over its own issue store).
package search

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/geo"
	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/types"
)

// Document is the indexed view of one Place's current revision.
type Document struct {
	PlaceID     types.ID
	Title       string
	Description string
	Tags        []string
	Location    geo.Point
	Status      types.ReviewStatus
	Avg         types.AvgRatings
}

// Index is an in-memory, mutex-guarded search index. All updates
// happen synchronously within the call that caused them (spec.md
// §4.5: "within the same logical operation"), so FlushIndex has
// nothing to wait for; it exists to give callers (and tests ported
// from an implementation where indexing really was asynchronous) a
// stable barrier to call without caring which backend they're on.
type Index struct {
	store storage.Store

	mu       sync.RWMutex
	docs     map[types.ID]*Document
	tokens   map[string]map[types.ID]struct{} // text token -> doc ids
	tags     map[string]map[types.ID]struct{} // normalized tag -> doc ids
}

// New builds an empty Index backed by store for reindex reads.
func New(store storage.Store) *Index {
	return &Index{
		store:  store,
		docs:   make(map[types.ID]*Document),
		tokens: make(map[string]map[types.ID]struct{}),
		tags:   make(map[string]map[types.ID]struct{}),
	}
}

// FlushIndex is a no-op barrier; see Index's doc comment.
func (ix *Index) FlushIndex(ctx context.Context) error { return nil }

// Reindex reloads placeID's current revision and ratings from the
// store and upserts its Document, implementing spec.md's
// add_or_update_place. A place that no longer exists (e.g. hard test
// cleanup) is removed from the index instead of erroring.
func (ix *Index) Reindex(ctx context.Context, placeID types.ID) error {
	view, err := ix.store.GetPlace(ctx, placeID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			ix.remove(placeID)
			return nil
		}
		return fmt.Errorf("load place %s for reindex: %w", placeID, err)
	}
	ratings, err := ix.store.ListRatings(ctx, placeID, false)
	if err != nil {
		return fmt.Errorf("load ratings for %s: %w", placeID, err)
	}
	doc := &Document{
		PlaceID:     placeID,
		Title:       view.Revision.Title,
		Description: view.Revision.Description,
		Tags:        view.Revision.Tags,
		Location:    view.Revision.Location,
		Status:      view.Revision.CurrentStatus,
		Avg:         types.ComputeAvgRatings(ratings),
	}
	ix.upsert(doc)
	return nil
}

func (ix *Index) upsert(doc *Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.docs[doc.PlaceID]; ok {
		ix.unindexLocked(old)
	}
	ix.docs[doc.PlaceID] = doc
	ix.indexLocked(doc)
}

func (ix *Index) remove(placeID types.ID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if old, ok := ix.docs[placeID]; ok {
		ix.unindexLocked(old)
		delete(ix.docs, placeID)
	}
}

func (ix *Index) indexLocked(doc *Document) {
	for _, tok := range textTokens(doc) {
		set, ok := ix.tokens[tok]
		if !ok {
			set = make(map[types.ID]struct{})
			ix.tokens[tok] = set
		}
		set[doc.PlaceID] = struct{}{}
	}
	for _, tag := range doc.Tags {
		set, ok := ix.tags[tag]
		if !ok {
			set = make(map[types.ID]struct{})
			ix.tags[tag] = set
		}
		set[doc.PlaceID] = struct{}{}
	}
}

func (ix *Index) unindexLocked(doc *Document) {
	for _, tok := range textTokens(doc) {
		if set, ok := ix.tokens[tok]; ok {
			delete(set, doc.PlaceID)
			if len(set) == 0 {
				delete(ix.tokens, tok)
			}
		}
	}
	for _, tag := range doc.Tags {
		if set, ok := ix.tags[tag]; ok {
			delete(set, doc.PlaceID)
			if len(set) == 0 {
				delete(ix.tags, tag)
			}
		}
	}
}

func textTokens(doc *Document) []string {
	toks := Tokenize(doc.Title + " " + doc.Description)
	out := make([]string, 0, len(toks.Terms))
	for _, t := range toks.Terms {
		out = append(out, t.Text)
	}
	return out
}

// scored pairs a document with its internal tiebreak score for
// ranking, per spec.md §4.5: "combined average rating DESC with a
// tiebreaker of document internal score".
type scored struct {
	doc   *Document
	score float64
}

// Search evaluates q against the current index contents and returns
// matching documents ordered by combined average rating DESC, ties
// broken by internal text-match score DESC, truncated to q.Limit when
// positive.
func (ix *Index) Search(q Query) []*Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	candidates := ix.candidateSetLocked(q)

	var results []scored
	for id := range candidates {
		doc := ix.docs[id]
		if doc == nil {
			continue
		}
		ok, score := ix.matchLocked(doc, q)
		if !ok {
			continue
		}
		results = append(results, scored{doc: doc, score: score})
	}

	return rankAndLimit(results, q.Limit)
}

// rankAndLimit orders scored results by combined average rating DESC,
// ties broken by internal score DESC (spec.md §4.5), truncating to
// limit when positive.
func rankAndLimit(results []scored, limit int) []*Document {
	sort.SliceStable(results, func(i, j int) bool {
		ci, cj := results[i].doc.Avg.Combined(), results[j].doc.Avg.Combined()
		if ci != cj {
			return ci > cj
		}
		return results[i].score > results[j].score
	})

	out := make([]*Document, 0, len(results))
	for _, r := range results {
		out = append(out, r.doc)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// candidateSetLocked narrows the search universe before the full
// per-document match check, using whichever filter is cheapest and
// most selective: an explicit id list, or all known documents.
func (ix *Index) candidateSetLocked(q Query) map[types.ID]struct{} {
	if len(q.IDs) > 0 {
		set := make(map[types.ID]struct{}, len(q.IDs))
		for _, id := range q.IDs {
			if _, ok := ix.docs[id]; ok {
				set[id] = struct{}{}
			}
		}
		return set
	}
	set := make(map[types.ID]struct{}, len(ix.docs))
	for id := range ix.docs {
		set[id] = struct{}{}
	}
	return set
}
