package cmd

import "strings"

// Tokenize splits s on runs of whitespace. Leading and trailing whitespace is
// dropped and blank input yields an empty slice. There is no quoting.
func Tokenize(s string) []string {
	fields := strings.Fields(s)
	if fields == nil {
		return []string{}
	}
	return fields
}

// SplitCommand separates the command name from the remaining tokens. name is
// empty when text is blank.
func SplitCommand(text string) (name string, tail []string) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return "", tokens
	}
	return tokens[0], tokens[1:]
}
