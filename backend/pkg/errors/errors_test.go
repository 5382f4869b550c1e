package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorType_TypedAndWrapped(t *testing.T) {
	err := NewAnalysisContractViolation("UsersByID", "is nil")
	assert.True(t, IsErrorType(err, ErrorTypeAnalysis))
	assert.False(t, IsErrorType(err, ErrorTypeGraph))

	wrapped := fmt.Errorf("building edges: %w", err)
	assert.True(t, IsErrorType(wrapped, ErrorTypeAnalysis))

	var violation *ErrAnalysisContractViolation
	assert.True(t, errors.As(wrapped, &violation))
	assert.Equal(t, "UsersByID", violation.Dependency)
}

func TestIsErrorType_Nil(t *testing.T) {
	assert.False(t, IsErrorType(nil, ErrorTypeGraph))
}

func TestBaseError_Message(t *testing.T) {
	err := NewGraphQueryFailed("load users", context.DeadlineExceeded)
	assert.Equal(t, "[graph] query failed: load users: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewGraphConnectionFailed("bolt://localhost:7687", nil)))
	assert.True(t, IsRetryable(NewDiscordFetchFailed("123", nil)))
	assert.False(t, IsRetryable(NewContextCancelled("analyze", context.Canceled)))
	assert.False(t, IsRetryable(NewAnalysisFailed("embedding", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
}
