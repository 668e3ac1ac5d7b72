package text

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the form of a token used for matching: NFKC normalised and lowercased.
func Normalize(token string) string {
	return strings.ToLower(norm.NFKC.String(token))
}

// Key joins the normalised forms of tokens with single spaces. Phrases and text windows
// with the same key match.
func Key(tokens []Token) string {
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return tokens[0].Norm
	}
	var b strings.Builder
	for i, token := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(token.Norm)
	}
	return b.String()
}
