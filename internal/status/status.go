// Package status defines the uniform status taxonomy used across every
// operation in the client: bit codec, NDTP codec, config DAG, device
// client, and stream endpoints all return a Status instead of an ad-hoc
// error.
package status

import "fmt"

// Code is a closed enumeration of outcome codes. The set is fixed and
// known at build time; never add a fallback "unknown-unknown" value.
type Code string

const (
	OK                 Code = "ok"
	Cancelled          Code = "cancelled"
	Unknown            Code = "unknown"
	InvalidArgument    Code = "invalid_argument"
	DeadlineExceeded   Code = "deadline_exceeded"
	NotFound           Code = "not_found"
	AlreadyExists      Code = "already_exists"
	PermissionDenied   Code = "permission_denied"
	ResourceExhausted  Code = "resource_exhausted"
	FailedPrecondition Code = "failed_precondition"
	Aborted            Code = "aborted"
	OutOfRange         Code = "out_of_range"
	Unimplemented      Code = "unimplemented"
	Internal           Code = "internal"
	Unavailable        Code = "unavailable"
	DataLoss           Code = "data_loss"
	Unauthenticated    Code = "unauthenticated"
)

// Status is a tagged outcome: a Code plus an optional human-readable
// message. Status implements error so it composes with fmt.Errorf and
// errors.Is/As, but callers that care about the code should type-assert
// or use Is/FromError rather than string-matching Error().
type Status struct {
	Code    Code
	Message string

	// Hint and Err are ambient, CLI-facing enrichment fields, not part
	// of spec.md's core taxonomy: they let a boundary (cmd/synapsectl)
	// print actionable guidance without the core library depending on
	// any presentation concern.
	Hint string
	Err  error
}

// New builds a Status with the given code and formatted message.
func New(code Code, format string, args ...any) Status {
	return Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

// OKStatus is the canonical ok status: code ok implies an empty message.
func OKStatus() Status { return Status{Code: OK} }

// Error implements the error interface.
func (s Status) Error() string {
	if s.Message == "" {
		return string(s.Code)
	}
	msg := fmt.Sprintf("%s: %s", s.Code, s.Message)
	if s.Hint != "" {
		msg += "\n  Hint: " + s.Hint
	}
	if s.Err != nil {
		msg += "\n  Details: " + s.Err.Error()
	}
	return msg
}

// Unwrap exposes any wrapped cause for errors.Is/errors.As.
func (s Status) Unwrap() error { return s.Err }

// Ok reports whether the status is the ok code.
func (s Status) Ok() bool { return s.Code == OK }

// WithHint returns a copy of s with Hint set, for boundary-level enrichment.
func (s Status) WithHint(hint string) Status {
	s.Hint = hint
	return s
}

// Wrap attaches a lower-level cause to a Status without altering its code.
func (s Status) Wrap(err error) Status {
	s.Err = err
	return s
}

// FromError maps a plain Go error into a Status. If err is already a
// Status (or wraps one), it is returned unchanged; otherwise it is
// classified as Internal, matching §7's rule that structural failures
// default to internal rather than silently succeeding.
func FromError(err error) Status {
	if err == nil {
		return OKStatus()
	}
	if s, ok := err.(Status); ok {
		return s
	}
	var s Status
	if As(err, &s) {
		return s
	}
	return Status{Code: Internal, Message: err.Error()}
}

// As is a narrow local copy of errors.As specialized to Status, avoiding
// an import cycle concern and keeping this package dependency-free.
func As(err error, target *Status) bool {
	for err != nil {
		if s, ok := err.(Status); ok {
			*target = s
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// DeviceReported wraps a non-ok status code and message reported by the
// device itself into an Internal Status per §7: "(code: 5): <message>".
func DeviceReported(code int, message string) Status {
	return Status{
		Code:    Internal,
		Message: fmt.Sprintf("(code: %d): %s", code, message),
	}
}
