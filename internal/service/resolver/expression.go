package resolver

import (
	"regexp"
	"strings"
	"unicode"
)

const operatorChars = "+-/*()^÷"

var (
	expressionPattern = regexp.MustCompile(`(([+\-/*()^÷])?(\d+)([+\-/*()^÷])?(\d?)([+\-/*()^÷])?)+`)

	expressionReplacer = strings.NewReplacer(
		"^", "**",
		"÷", "/",
	)
)

// ExtractExpression finds the arithmetic expression carried by a chat message.
// Operators are normalized (^ becomes **, ÷ becomes /) and whitespace removed
// before the longest leftmost run of digits and operators is taken.
func ExtractExpression(text string) (string, bool) {
	if !strings.ContainsAny(text, operatorChars) {
		return "", false
	}

	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, expressionReplacer.Replace(text))

	expr := expressionPattern.FindString(normalized)
	if expr == "" {
		return "", false
	}
	return expr, true
}
