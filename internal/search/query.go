package search

import (
	"strings"

	"github.com/commonplaces/placecore/internal/geo"
	"github.com/commonplaces/placecore/internal/types"
)

// Query is the evaluated form of an IndexQuery (spec.md §4.5): free
// text already tokenized into must/mustnot/should terms, hashtags that
// must match, tags that should match (OR), an id restriction, a bbox
// restriction, an allowed status set, and an optional cleared-revision
// override for an org_tag query.
type Query struct {
	Text     []Term
	HashTags []string
	Tags     []string
	IDs      []types.ID
	Bbox     *geo.Bbox
	Status   []types.ReviewStatus
	Limit    int

	// OrgTag restricts and reshapes the query to organization O's
	// cleared view (spec.md §4.4): documents are evaluated at O's
	// last-cleared revision rather than the current one, and places
	// carrying no tag owned by O are excluded. Populated via
	// Index.SearchAsOrg rather than set directly.
	OrgTag *types.ID
}

// NewTextQuery builds a Query from a raw free-text search string,
// applying Tokenize and defaulting Status to the visible set per
// spec.md §4.5.
func NewTextQuery(text string) Query {
	toks := Tokenize(text)
	return Query{
		Text:     toks.Terms,
		HashTags: toks.HashTags,
		Status:   defaultVisibleStatuses(),
	}
}

func defaultVisibleStatuses() []types.ReviewStatus {
	return []types.ReviewStatus{types.Created, types.Confirmed}
}

func (ix *Index) statusAllowed(doc *Document, q Query) bool {
	statuses := q.Status
	if len(statuses) == 0 {
		statuses = defaultVisibleStatuses()
	}
	for _, s := range statuses {
		if doc.Status == s {
			return true
		}
	}
	return false
}

// matchLocked evaluates q against doc and returns (true, score) when
// doc is a match, score being the text-match tiebreak value (count of
// matched SHOULD terms plus matched tag/hashtag terms).
func (ix *Index) matchLocked(doc *Document, q Query) (bool, float64) {
	// A cleared-view org query is not restricted to the public visible
	// status set: an organization reviewing its own moderated tags
	// needs to see a place pending confirmation, not just live ones.
	if q.OrgTag == nil && !ix.statusAllowed(doc, q) {
		return false, 0
	}
	if q.Bbox != nil && !q.Bbox.ContainsPoint(doc.Location) {
		return false, 0
	}

	tagSet := types.NewTagSet(doc.Tags...)
	for _, h := range q.HashTags {
		if !tagSet.Has(h) {
			return false, 0
		}
	}

	var score float64
	if len(q.Tags) > 0 {
		anyTag := false
		for _, t := range q.Tags {
			if tagSet.Has(t) {
				anyTag = true
				score++
			}
		}
		if !anyTag {
			return false, 0
		}
	}

	haystack := strings.ToLower(doc.Title + " " + doc.Description)
	for _, term := range q.Text {
		matched := strings.Contains(haystack, term.Text)
		switch term.Polarity {
		case Must:
			if !matched {
				return false, 0
			}
			score++
		case MustNot:
			if matched {
				return false, 0
			}
		case Should:
			if matched {
				score++
			}
		}
	}

	score += float64(len(q.HashTags))
	return true, score
}
