package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeInput(strings.Repeat("a", tt.inputSize), 0)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeInput_ExplicitLimit(t *testing.T) {
	_, err := SanitizeInput("12345", 4)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := SanitizeInput("1234", 4)
	require.NoError(t, err)
	assert.Equal(t, "1234", got)
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")

	_, err := SanitizeInput("123456789", 0)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	t.Setenv(EnvMaxInputSize, "not-a-number")
	_, err = SanitizeInput("123456789", 0)
	assert.NoError(t, err)
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "배열에서 중복 찾기", "배열에서 중복 찾기"},
		{"Safe Controls", "Line1\nLine2\tTabbed\r\n", "Line1\nLine2\tTabbed\r\n"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("bad\xff", 0)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
