package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeDiscord represents Discord-related errors
	ErrorTypeDiscord ErrorType = "discord"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeAnalysis represents analytics engine errors
	ErrorTypeAnalysis ErrorType = "analysis"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrorType reports the category. Promoted through every typed error below.
func (e *BaseError) ErrorType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Discord Errors

// ErrDiscordSessionUnavailable is returned when Discord session is not available
var ErrDiscordSessionUnavailable = NewBaseError(ErrorTypeDiscord, "Discord session not available", nil)

// ErrDiscordGuildNotFound is returned when a Discord guild cannot be found
type ErrDiscordGuildNotFound struct {
	*BaseError
	GuildID string
}

func NewDiscordGuildNotFound(guildID string, err error) *ErrDiscordGuildNotFound {
	return &ErrDiscordGuildNotFound{
		BaseError: NewBaseError(ErrorTypeDiscord, fmt.Sprintf("guild not found: %s", guildID), err),
		GuildID:   guildID,
	}
}

// ErrDiscordGuildFetchFailed is returned when a guild's channels cannot be listed
type ErrDiscordGuildFetchFailed struct {
	*BaseError
	GuildID string
}

func NewDiscordGuildFetchFailed(guildID string, err error) *ErrDiscordGuildFetchFailed {
	return &ErrDiscordGuildFetchFailed{
		BaseError: NewBaseError(ErrorTypeDiscord, fmt.Sprintf("failed to list guild channels: %s", guildID), err),
		GuildID:   guildID,
	}
}

// ErrDiscordFetchFailed is returned when reading a channel's messages fails
type ErrDiscordFetchFailed struct {
	*BaseError
	ChannelID string
}

func NewDiscordFetchFailed(channelID string, err error) *ErrDiscordFetchFailed {
	return &ErrDiscordFetchFailed{
		BaseError: NewBaseError(ErrorTypeDiscord, fmt.Sprintf("failed to fetch messages: %s", channelID), err),
		ChannelID: channelID,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// ErrGraphTeamNotFound is returned when a team has no users in the graph
type ErrGraphTeamNotFound struct {
	*BaseError
	TeamID string
}

func NewGraphTeamNotFound(teamID string) *ErrGraphTeamNotFound {
	return &ErrGraphTeamNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("team not found: %s", teamID), nil),
		TeamID:    teamID,
	}
}

// Analysis Errors

// ErrAnalysisContractViolation is returned when a required collaborator is
// missing or malformed. Raised before any computation starts.
type ErrAnalysisContractViolation struct {
	*BaseError
	Dependency string
	Reason     string
}

func NewAnalysisContractViolation(dependency, reason string) *ErrAnalysisContractViolation {
	return &ErrAnalysisContractViolation{
		BaseError:  NewBaseError(ErrorTypeAnalysis, fmt.Sprintf("contract violation: %s %s", dependency, reason), nil),
		Dependency: dependency,
		Reason:     reason,
	}
}

// ErrAnalysisFailed wraps a failure inside one stage of an analysis pass
type ErrAnalysisFailed struct {
	*BaseError
	Stage string
}

func NewAnalysisFailed(stage string, err error) *ErrAnalysisFailed {
	return &ErrAnalysisFailed{
		BaseError: NewBaseError(ErrorTypeAnalysis, fmt.Sprintf("analysis stage failed: %s", stage), err),
		Stage:     stage,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type typedError interface {
	ErrorType() ErrorType
}

// IsErrorType checks if an error, or anything it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if typed, ok := err.(typedError); ok && typed.ErrorType() == errType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	// Analysis passes are pure; re-running yields the same contract violation
	if IsErrorType(err, ErrorTypeAnalysis) {
		return false
	}
	// Graph connection errors are retryable
	if IsErrorType(err, ErrorTypeGraph) {
		return true
	}
	return IsErrorType(err, ErrorTypeDiscord)
}
