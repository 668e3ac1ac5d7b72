package text

import "strings"

// CollapseWhitespace replaces every run of whitespace with a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FlattenNewlines replaces literal "\n" escape sequences and real line breaks with spaces.
func FlattenNewlines(s string) string {
	return newlineReplacer.Replace(s)
}

// FlattenLineBreaks replaces line breaks with spaces, leaving literal "\n" sequences alone.
func FlattenLineBreaks(s string) string {
	return lineBreakReplacer.Replace(s)
}

// StripEscapes removes literal "\n" escape sequences and any remaining backslashes.
func StripEscapes(s string) string {
	return escapeReplacer.Replace(s)
}

var newlineReplacer = strings.NewReplacer(`\n`, " ", "\r\n", " ", "\n", " ", "\r", " ")

var lineBreakReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

var escapeReplacer = strings.NewReplacer(`\n`, "", `\`, "")
