package validators

import "strings"

// MaxFreeTextLen bounds operator-entered notes and comments.
const MaxFreeTextLen = 1000

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// SanitizeFreeText trims optional free text and drops values that are empty
// after trimming.
func SanitizeFreeText(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	cleaned := SanitizeString(*input, maxLen)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
