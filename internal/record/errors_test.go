package record

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterceptError_Error(t *testing.T) {
	cause := errors.New("permission denied")

	cases := []struct {
		name string
		err  *InterceptError
		want string
	}{
		{
			"code and message",
			&InterceptError{Code: ErrCodeConfiguration, Message: "variable unset"},
			"CONFIGURATION_MISSING: variable unset",
		},
		{
			"with path",
			&InterceptError{Code: ErrCodeIO, Message: "couldn't open", Path: "/t/log"},
			"IO_FAILURE: couldn't open (path=/t/log)",
		},
		{
			"with cause",
			&InterceptError{Code: ErrCodeEnvironment, Message: "no cwd", Err: cause},
			"ENVIRONMENT_UNAVAILABLE: no cwd: permission denied",
		},
		{
			"with path and cause",
			&InterceptError{Code: ErrCodeIO, Message: "couldn't open", Path: "/t/log", Err: cause},
			"IO_FAILURE: couldn't open (path=/t/log): permission denied",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestInterceptError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewIOError("couldn't write record", "/t/log", cause)

	assert.True(t, errors.Is(err, cause))
}

func TestIsHelpers_MatchWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("recording invocation: %w", NewConfigurationError())

	assert.True(t, IsConfigurationError(wrapped))
	assert.False(t, IsEnvironmentError(wrapped))
	assert.False(t, IsResourceError(wrapped))
	assert.False(t, IsIOError(wrapped))
}

func TestIsHelpers_AllCodes(t *testing.T) {
	assert.True(t, IsEnvironmentError(NewEnvironmentError(errors.New("x"))))
	assert.True(t, IsResourceError(NewResourceError("overflow")))
	assert.True(t, IsIOError(NewIOError("open", "/p", nil)))
	assert.False(t, IsIOError(errors.New("plain")))
}
