package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
)

const (
	// MinItemNameLength and MaxItemNameLength bound a trimmed analyze input, in characters.
	MinItemNameLength = 2
	MaxItemNameLength = 100

	maxKeyLength = 100
)

var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// NormalizeKey turns an item phrase into its cache and dedup key:
// lowercased, trimmed, whitespace collapsed and capped at 100 characters.
func NormalizeKey(phrase string) string {
	key := strings.ToLower(strings.TrimSpace(phrase))
	key = multipleSpacesRegex.ReplaceAllString(key, " ")
	if utf8.RuneCountInString(key) > maxKeyLength {
		key = strings.TrimSpace(string([]rune(key)[:maxKeyLength]))
	}
	return key
}

// ValidateItemName trims name and checks its length.
func ValidateItemName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n < MinItemNameLength || n > MaxItemNameLength {
		return "", domain.ErrInvalidItemName
	}
	return trimmed, nil
}
