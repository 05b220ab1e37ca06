package strutils

import (
	"fmt"
	"strings"
)

const MAX_VIDEO_CODE_LENGTH = 32

// NormalizeVideoCode trims surrounding whitespace and uppercases the code.
// Only ASCII letters, digits, '-' and '_' are accepted.
func NormalizeVideoCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("empty video code")
	}
	if len(code) > MAX_VIDEO_CODE_LENGTH {
		return "", fmt.Errorf("video code too long. input: '%.40s'", code)
	}

	var normalized strings.Builder
	normalized.Grow(len(code))
	for _, char := range code {
		switch {
		case char >= 'a' && char <= 'z':
			normalized.WriteRune(char - 'a' + 'A')
		case char >= 'A' && char <= 'Z', char >= '0' && char <= '9', char == '-', char == '_':
			normalized.WriteRune(char)
		default:
			return "", fmt.Errorf("invalid character in video code. input: '%s'", code)
		}
	}
	return normalized.String(), nil
}
