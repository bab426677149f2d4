// Package errors provides error handling for pact.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for operator-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.IsNotFound(err) {
//	    // handle missing atom
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetReportableStackTrace extracts the stack trace attached by Wrap/WithStack.
var GetReportableStackTrace = crdb.GetReportableStackTrace

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the governance taxonomy. Use these with Is() for
// type-safe checks, and the NewXxxf constructors to attach the parameterized
// message callers and tests assert on.
var (
	// ErrValidation indicates a malformed description, category, or request
	// field on create/update.
	ErrValidation = New("validation failed")

	// ErrStateConflict indicates a lifecycle violation: mutation outside
	// draft/proposed, double commit, double supersede, superseding a draft,
	// or a concurrent write detected by row versioning.
	ErrStateConflict = New("state conflict")

	// ErrQualityGate indicates an atom's quality score was below the commit
	// threshold at transition time.
	ErrQualityGate = New("quality gate failed")

	// ErrNotFound indicates an atom, changeset, or molecule id did not resolve.
	ErrNotFound = New("not found")

	// ErrCouplingGate indicates the repository-level coupling gate failed.
	// The wrapping error message embeds the full rendered report.
	ErrCouplingGate = New("coupling gate failed")
)

// NewValidationf creates a validation error with a formatted message.
func NewValidationf(format string, args ...interface{}) error {
	return Wrap(ErrValidation, Newf(format, args...).Error())
}

// NewStateConflictf creates a state-conflict error with a formatted message.
func NewStateConflictf(format string, args ...interface{}) error {
	return Wrap(ErrStateConflict, Newf(format, args...).Error())
}

// NewQualityGatef creates a quality-gate error with a formatted message.
func NewQualityGatef(format string, args ...interface{}) error {
	return Wrap(ErrQualityGate, Newf(format, args...).Error())
}

// NewNotFoundf creates a not-found error with a formatted message.
func NewNotFoundf(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// IsValidation checks if an error is or wraps ErrValidation.
func IsValidation(err error) bool {
	return err != nil && Is(err, ErrValidation)
}

// IsStateConflict checks if an error is or wraps ErrStateConflict.
func IsStateConflict(err error) bool {
	return err != nil && Is(err, ErrStateConflict)
}

// IsQualityGate checks if an error is or wraps ErrQualityGate.
func IsQualityGate(err error) bool {
	return err != nil && Is(err, ErrQualityGate)
}

// IsNotFound checks if an error is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsCouplingGate checks if an error is or wraps ErrCouplingGate.
func IsCouplingGate(err error) bool {
	return err != nil && Is(err, ErrCouplingGate)
}
