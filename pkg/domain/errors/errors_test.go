package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := New(CodeCommandFailed, "appengine", "failed to list versions", stderrors.New("exit status 1"))
	assert.Equal(t, "[appengine:COMMAND_FAILED] failed to list versions: exit status 1", err.Error())

	err = Usage("bad %s", "flag")
	assert.Equal(t, "[cli:USAGE_ERROR] bad flag", err.Error())
}

func TestError_Is(t *testing.T) {
	parse := New(CodeParseFailed, "appengine", "short row", nil)
	wrapped := fmt.Errorf("project p: %w", parse)

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"parse is parse", wrapped, ErrParseFailed, true},
		{"parse is command failure", wrapped, ErrCommandFailed, true},
		{"command failure is not parse", New(CodeCommandFailed, "appengine", "x", nil), ErrParseFailed, false},
		{"usage is usage", Usage("x"), ErrUsage, true},
		{"usage is not command failure", Usage("x"), ErrCommandFailed, false},
		{"tool not found is command failure", New(CodeToolNotFound, "appengine", "x", nil), ErrCommandFailed, true},
		{"plain error", stderrors.New("x"), ErrUsage, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stderrors.Is(tt.err, tt.target))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := New(CodeCommandFailed, "appengine", "msg", cause)
	assert.True(t, stderrors.Is(err, cause))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeUsage, CodeOf(fmt.Errorf("wrapped: %w", Usage("x"))))
	assert.Equal(t, CodeUnknown, CodeOf(stderrors.New("plain")))
	assert.Equal(t, CodeUnknown, CodeOf(nil))
}
