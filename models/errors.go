package models

import (
	"errors"
	"fmt"
)

// FailureReason classifies why a product info request could not be served.
type FailureReason string

const (
	ReasonMissingURL          FailureReason = "MissingUrl"
	ReasonFetchFailed         FailureReason = "FetchFailed"
	ReasonProductInfoNotFound FailureReason = "ProductInfoNotFound"
)

// Public messages returned to clients. Upstream detail never goes here.
const (
	MsgURLRequired     = "URL is required"
	MsgFetchFailed     = "Failed to fetch Amazon page"
	MsgProductNotFound = "Could not extract product info"
)

// ExtractError is the internal error type carrying a FailureReason.
// It implements the error interface and supports error wrapping via Unwrap.
type ExtractError struct {
	Reason  FailureReason
	Message string
	Err     error // wrapped upstream error, for logs only
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// NewExtractError creates a new ExtractError.
func NewExtractError(reason FailureReason, message string, err error) *ExtractError {
	return &ExtractError{Reason: reason, Message: message, Err: err}
}

// ReasonOf returns the FailureReason carried by err. Errors that are not an
// ExtractError count as fetch failures.
func ReasonOf(err error) FailureReason {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Reason
	}
	return ReasonFetchFailed
}

// ToResponse converts an internal error to the API-facing ErrorResponse.
func (e *ExtractError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}
