// Package errors defines stable error codes for Codex failure modes.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigInvalid indicates a malformed rule definition or configuration
	// (missing required field, invalid regex) at load time
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// RuleNotFound indicates a rule name that is not in the loaded rule set
	RuleNotFound ErrorCode = "RULE_NOT_FOUND"
	// QueryMalformed indicates free-text query syntax the full-text engine rejected
	QueryMalformed ErrorCode = "QUERY_MALFORMED"
	// StoreFailure indicates a persistence failure (disk full, lock contention)
	StoreFailure ErrorCode = "STORE_FAILURE"
	// ScanNotFound indicates a scan id with no recorded scan
	ScanNotFound ErrorCode = "SCAN_NOT_FOUND"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// CodexError represents a Codex error with code, message, and suggestions
type CodexError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new CodexError
func New(code ErrorCode, message string, cause error) *CodexError {
	return &CodexError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *CodexError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CodexError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CodexError) WithDetails(details interface{}) *CodexError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from an error chain, or InternalError
// if the chain contains no CodexError.
func CodeOf(err error) ErrorCode {
	var ce *CodexError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "codex rules --validate",
			Safe:        true,
			Description: "Validate the loaded rule set and report malformed rules",
		},
	},
	StoreFailure: {
		{
			Type:        RunCommand,
			Command:     "codex scan --reindex",
			Safe:        true,
			Description: "Recreate the violation database and re-run the scan",
		},
	},
	QueryMalformed: {
		{
			Type:        RunCommand,
			Command:     `codex query "<plain words, no operators>"`,
			Safe:        true,
			Description: "Retry with plain search terms",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
