package errors

import (
	"errors"
	"fmt"
	"time"
)

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped raw error to errors.Is/As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the ErrorCode carried by err, or ErrorCode_INTERNAL when err
// is not an AppError.
func CodeOf(err error) ErrorCode {
	var app AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return ErrorCode_INTERNAL
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_INTERNAL,
		Message: "Internal analysis error",
	}
}

func ErrInvalidInput(message string) AppError {
	return AppError{
		Code:    ErrorCode_INVALID_INPUT,
		Message: message,
	}
}

// Model boundary errors. These are the only errors that propagate to callers
// as hard failures; everything downstream degrades per axis instead.

func ErrMalformedTimecode(raw string, field string) AppError {
	return AppError{
		Code:    ErrorCode_MALFORMED_TIMECODE,
		Message: "Timecode is not parseable",
	}.WithDetail("raw", raw).WithDetail("field", field)
}

func ErrInvalidSegment(reason string) AppError {
	return AppError{
		Code:    ErrorCode_INVALID_SEGMENT,
		Message: "Segment rejected at construction",
	}.WithDetail("reason", reason)
}

func ErrInvalidPattern(key string, reason string) AppError {
	return AppError{
		Code:    ErrorCode_INVALID_PATTERN,
		Message: "Pattern identity data is invalid",
	}.WithDetail("key", key).WithDetail("reason", reason)
}

// Analysis errors. Reported and logged, never fatal to the pipeline.

func ErrChecksumMismatch(segmentID, stored, computed string) AppError {
	return AppError{
		Code:    ErrorCode_CHECKSUM_MISMATCH,
		Message: "Protected segment was modified after protection",
	}.WithDetail("segment_id", segmentID).
		WithDetail("stored_checksum", stored).
		WithDetail("computed_checksum", computed)
}

func ErrInsufficientData(axis string, have, need int) AppError {
	return AppError{
		Code:    ErrorCode_INSUFFICIENT_DATA,
		Message: fmt.Sprintf("Not enough data to score %s", axis),
	}.WithDetail("have", fmt.Sprintf("%d", have)).
		WithDetail("need", fmt.Sprintf("%d", need))
}
