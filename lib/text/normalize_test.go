package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "lowercase", input: "Hello", expected: "hello"},
		{name: "normalize unicode characters", input: "x²", expected: "x2"},
		{name: "full width letters", input: "ＴＥＲＭ", expected: "term"},
		{name: "punctuation untouched", input: ".", expected: "."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.input), tt.name)
	}
}

func TestKey(t *testing.T) {
	tokens, err := Tokenize("Native  American\ttribes")
	assert.NoError(t, err)

	assert.Equal(t, "native american tribes", Key(tokens))
	assert.Equal(t, "american", Key(tokens[1:2]))
	assert.Equal(t, "", Key(nil))
}

func TestCleaning(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a \n\t b   c \n"))
	assert.Equal(t, "line one line two  three", FlattenNewlines(`line one\nline two`+"\n\nthree"))
	assert.Equal(t, `a\nb c`, FlattenLineBreaks(`a\nb`+"\nc"))
	assert.Equal(t, "Papers, 1900-1950", StripEscapes(`Papers,\n 1900-1950\`))
}
