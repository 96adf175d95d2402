package services

import "errors"

// Code is the stable discriminator carried on every failure surfaced to a
// caller, chat or HTTP.
type Code string

const (
	CodeValidation  Code = "VALIDATION"
	CodeRateLimited Code = "RATE_LIMITED"
	CodeNotFound    Code = "NOT_FOUND"
	CodeExpired     Code = "EXPIRED"
	CodeExhausted   Code = "EXHAUSTED"
	CodeMismatch    Code = "MISMATCH"
	CodeConflict    Code = "CONFLICT"
	CodeUpstream    Code = "UPSTREAM_FAILURE"
)

// CodedError pairs a machine-readable code with a human-readable message.
// RemainingAttempts is populated only for MISMATCH.
type CodedError struct {
	Code              Code   `json:"code"`
	Message           string `json:"message"`
	RemainingAttempts int    `json:"remainingAttempts,omitempty"`
}

func (e *CodedError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NewCodedError(code Code, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// AsCoded unwraps err into a *CodedError if possible.
func AsCoded(err error) (*CodedError, bool) {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded, true
	}
	return nil, false
}
