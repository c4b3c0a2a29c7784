package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// DeclInputInvalid indicates the declaration tree input is missing or malformed
	DeclInputInvalid ErrorCode = "DECL_INPUT_INVALID"
	// SchemaMismatch indicates the assembled document violated the report schema.
	// This is always an engine defect, never a caller mistake.
	SchemaMismatch ErrorCode = "SCHEMA_MISMATCH"
	// ReportWriteFailed indicates the report could not be written to disk
	ReportWriteFailed ErrorCode = "REPORT_WRITE_FAILED"
	// ManifestUnreadable indicates a package manifest could not be read or parsed
	ManifestUnreadable ErrorCode = "MANIFEST_UNREADABLE"
	// SnapshotStoreFailed indicates the snapshot database rejected an operation
	SnapshotStoreFailed ErrorCode = "SNAPSHOT_STORE_FAILED"
	// ConfigInvalid indicates the configuration file is unusable
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
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

// SurfError represents a surfex error with code, message, and suggestions
type SurfError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new SurfError
func New(code ErrorCode, message string, cause error) *SurfError {
	return &SurfError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *SurfError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SurfError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *SurfError) WithDetails(details interface{}) *SurfError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	DeclInputInvalid: {
		{
			Type:        RunCommand,
			Command:     "surfex extract --input <declaration-tree.json>",
			Safe:        true,
			Description: "Re-run the front-end to regenerate the declaration tree, then extract again",
		},
	},
	SchemaMismatch: {
		{
			Type:        OpenDocs,
			URL:         "https://github.com/surfex/surfex/issues",
			Description: "A schema mismatch is an engine bug; file an issue with the reported diagnostic",
		},
	},
	ManifestUnreadable: {
		{
			Type:        RunCommand,
			Command:     "surfex check-versions --root <workspace>",
			Safe:        true,
			Description: "Verify the workspace root points at the directory holding package manifests",
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
