package chat

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// DefaultMaxCodeSize bounds the learner code attached to a message.
	DefaultMaxCodeSize = 64 * 1024
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "TUTORGRAPH_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput cleans user input by enforcing the size limit, validating
// UTF-8 and stripping control characters other than newline, tab and
// carriage return. A limit of zero or less selects the default.
func SanitizeInput(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = maxInputSize()
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	if !strings.ContainsFunc(input, isUnsafeControl) {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !isUnsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
