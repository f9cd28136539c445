package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := context.DeadlineExceeded

	// When: wrapping with IndexError
	ie := New(ErrCodeBatchTimeout, "timed out to process files - a.txt", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, ie)
	assert.Equal(t, originalErr, errors.Unwrap(ie))
	assert.True(t, errors.Is(ie, context.DeadlineExceeded))
}

func TestIndexError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "file error",
			code:     ErrCodeFileNotFound,
			message:  "file doesn't exist - input/777",
			expected: "[ERR_201_FILE_NOT_FOUND] file doesn't exist - input/777",
		},
		{
			name:     "empty input",
			code:     ErrCodeEmptyInput,
			message:  "no files supplied",
			expected: "[ERR_401_EMPTY_INPUT] no files supplied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestIndexError_Is_MatchesSentinelByCode(t *testing.T) {
	// Given: a timeout error wrapped by fmt
	err := fmt.Errorf("chunk 3: %w", New(ErrCodeBatchTimeout, "timed out", context.DeadlineExceeded))

	// Then: it matches the sentinel and not the others
	assert.True(t, errors.Is(err, ErrBatchTimeout))
	assert.False(t, errors.Is(err, ErrBatchFailed))
	assert.False(t, errors.Is(err, ErrEmptyInput))
}

func TestIndexError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeFileNotFound, "file not found", nil)
	err2 := New(ErrCodeConfigNotFound, "config not found", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestIndexError_WithDetails_AddsContext(t *testing.T) {
	err := New(ErrCodeFileNotFound, "file not found", nil)

	err = err.WithDetail("path", "/foo/bar.txt").WithDetail("size", "0")

	assert.Equal(t, "/foo/bar.txt", err.Details["path"])
	assert.Equal(t, "0", err.Details["size"])
}

func TestIndexError_WithSuggestion_AddsSuggestion(t *testing.T) {
	err := New(ErrCodeBatchTimeout, "timed out", nil).WithSuggestion("Increase --timeout")

	assert.Equal(t, "Increase --timeout", err.Suggestion)
}

func TestIndexError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeFileNotFound, CategoryIO},
		{ErrCodeFileRead, CategoryIO},
		{ErrCodeEmptyInput, CategoryValidation},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{ErrCodeBatchTimeout, CategoryInternal},
		{ErrCodeBatchFailed, CategoryInternal},
		{"short", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestIndexError_SeverityAndRetryable(t *testing.T) {
	tests := []struct {
		code          string
		wantSeverity  Severity
		wantRetryable bool
	}{
		{ErrCodeBatchFailed, SeverityFatal, false},
		{ErrCodeBatchTimeout, SeverityWarning, true},
		{ErrCodeFileNotFound, SeverityError, false},
		{ErrCodeEmptyInput, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
			assert.Equal(t, tt.wantRetryable, IsRetryable(err))
			assert.Equal(t, tt.wantSeverity == SeverityFatal, IsFatal(err))
		})
	}
}

func TestWrap_CreatesIndexErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	ie := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, ie)
	assert.Equal(t, ErrCodeInternal, ie.Code)
	assert.Equal(t, "something went wrong", ie.Message)
	assert.Equal(t, originalErr, ie.Cause)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestConstructors_SetCategory(t *testing.T) {
	assert.Equal(t, CategoryConfig, ConfigError("bad yaml", nil).Category)
	assert.Equal(t, CategoryIO, IOError("cannot read", nil).Category)
	assert.Equal(t, CategoryValidation, ValidationError("bad flag", nil).Category)
	assert.Equal(t, CategoryInternal, InternalError("boom", nil).Category)
}

func TestGetCodeAndCategory_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load: %w", New(ErrCodeEmptyInput, "no files supplied", nil))

	assert.Equal(t, ErrCodeEmptyInput, GetCode(err))
	assert.Equal(t, CategoryValidation, GetCategory(err))
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.Empty(t, GetCategory(nil))
}
