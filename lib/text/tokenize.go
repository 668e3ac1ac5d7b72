package text

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/blevesearch/segment"
)

// Token is a single word, number or punctuation segment of a text.
type Token struct {
	// Text is the token as it appears in the source.
	Text string
	// Norm is the normalised form used for matching.
	Norm string
	// Start and End are byte offsets into the source, End is exclusive.
	Start int
	End   int
}

/**
	Tokenize splits text into tokens using unicode word segmentation (UAX #29).
	Whitespace segments are dropped; punctuation segments are kept as tokens of
	their own, so "term1 materials." yields "term1", "materials" and ".".
	Possessive endings are split off words: "Eskimo's" yields "Eskimo" and "'s".
	Each token carries its byte offsets in text and its normalised form.
**/
func Tokenize(text string) ([]Token, error) {
	src := []byte(text)
	segmenter := segment.NewWordSegmenterDirect(src)

	var tokens []Token
	position := 0
	for segmenter.Segment() {
		segmentBytes := segmenter.Bytes()
		start := position
		position += len(segmentBytes)

		if segmenter.Type() == segment.None && isWhitespace(segmentBytes) {
			continue
		}

		token := string(segmentBytes)
		if segmenter.Type() == segment.Letter {
			if stem, suffix := splitPossessive(token); suffix != "" {
				tokens = append(tokens, newToken(stem, start), newToken(suffix, start+len(stem)))
				continue
			}
		}
		tokens = append(tokens, newToken(token, start))
	}
	if err := segmenter.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func newToken(token string, start int) Token {
	return Token{
		Text:  token,
		Norm:  Normalize(token),
		Start: start,
		End:   start + len(token),
	}
}

var possessiveSuffixes = []string{"'s", "'S", "\u2019s", "\u2019S"}

// splitPossessive splits a trailing 's, or a trailing apostrophe after s, off word. suffix is empty when word has
// no possessive ending.
func splitPossessive(word string) (stem, suffix string) {
	for _, possessive := range possessiveSuffixes {
		if len(word) > len(possessive) && strings.HasSuffix(word, possessive) {
			return word[:len(word)-len(possessive)], possessive
		}
	}
	for _, apostrophe := range []string{"'", "\u2019"} {
		trimmed := strings.TrimSuffix(word, apostrophe)
		if len(trimmed) < len(word) && (strings.HasSuffix(trimmed, "s") || strings.HasSuffix(trimmed, "S")) {
			return trimmed, apostrophe
		}
	}
	return word, ""
}

func isWhitespace(b []byte) bool {
	return len(bytes.TrimFunc(b, unicode.IsSpace)) == 0
}

// Window returns the source text covered by the tokens [start-size, end+size), clipped to the token bounds.
func Window(text string, tokens []Token, start, end, size int) string {
	if len(tokens) == 0 || start >= end || start < 0 || end > len(tokens) {
		return ""
	}
	lo := start - size
	if lo < 0 {
		lo = 0
	}
	hi := end + size
	if hi > len(tokens) {
		hi = len(tokens)
	}
	return text[tokens[lo].Start:tokens[hi-1].End]
}

// Span returns the source text covered by the tokens [start, end).
func Span(text string, tokens []Token, start, end int) string {
	return Window(text, tokens, start, end, 0)
}
