package search

import (
	"strings"
	"unicode"

	"github.com/commonplaces/placecore/internal/types"
)

// Polarity is the match requirement a free-text term carries
// (spec.md §4.5): a bare term SHOULD match, a '+'-prefixed term MUST
// match, a '-'-prefixed term MUST NOT match.
type Polarity int

const (
	Should Polarity = iota
	Must
	MustNot
)

// Term is one tokenized free-text search term.
type Term struct {
	Text     string
	Polarity Polarity
}

// Tokens is the parsed form of a free-text query string: terms plus
// any '#'-prefixed hashtags lifted out of the text, per spec.md §4.5's
// tokenization rules.
type Tokens struct {
	Terms    []Term
	HashTags []string
}

// tokenizer scans a query string rune-by-rune in the style of the
// teacher's internal/query.Lexer (next/peek/backup over a byte
// position), generalized from a boolean field-query grammar to plain
// whitespace/punctuation-delimited term scanning.
type tokenizer struct {
	input string
	pos   int
	width int
}

func (t *tokenizer) next() rune {
	if t.pos >= len(t.input) {
		t.width = 0
		return 0
	}
	r := rune(t.input[t.pos])
	t.width = 1
	t.pos += t.width
	return r
}

func (t *tokenizer) peek() rune {
	if t.pos >= len(t.input) {
		return 0
	}
	return rune(t.input[t.pos])
}

func (t *tokenizer) backup() { t.pos -= t.width }

func isBoundary(r rune) bool {
	return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '+' && r != '-' && r != '#')
}

// Tokenize splits query into terms and hashtags per spec.md §4.5: the
// string is split on whitespace and on punctuation other than '+',
// '-' and '#' (so "non-profit" stays one term); a token beginning
// with '#' is lifted into HashTags and removed from the text; leading
// '+'/'-' sigils set must/mustn't polarity; a bare sigil with nothing
// after it is dropped; everything is lowercased.
func Tokenize(query string) Tokens {
	t := &tokenizer{input: query}
	var out Tokens

	for {
		r := t.next()
		for r != 0 && isBoundary(r) {
			r = t.next()
		}
		if r == 0 {
			break
		}
		t.backup()

		word, hash := scanWord(t)
		if word == "" {
			continue
		}

		polarity := Should
		switch word[0] {
		case '+':
			polarity, word = Must, word[1:]
		case '-':
			polarity, word = MustNot, word[1:]
		}
		norm := strings.ToLower(word)
		if len(norm) < 1 {
			continue
		}
		if hash {
			out.HashTags = append(out.HashTags, types.NormalizeTag(norm))
			continue
		}
		out.Terms = append(out.Terms, Term{Text: norm, Polarity: polarity})
	}
	return out
}

func scanWord(t *tokenizer) (word string, hash bool) {
	var sb strings.Builder
	first := true
	for {
		r := t.next()
		if r == 0 {
			break
		}
		if first && (r == '+' || r == '-') {
			sb.WriteRune(r)
			first = false
			continue
		}
		if first && r == '#' {
			hash = true
			first = false
			continue
		}
		first = false
		if isBoundary(r) {
			t.backup()
			break
		}
		sb.WriteRune(r)
	}
	return sb.String(), hash
}
