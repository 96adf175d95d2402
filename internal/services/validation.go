package services

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the JSON error body: a stable code discriminator plus a
// human-readable message, with per-field validation details when present.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response with the given code.
func SendErrorResponse(w http.ResponseWriter, code Code, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Code: string(code), Error: message}
	if validationErr != nil {
		if fieldErrs, ok := validationErr.(validator.ValidationErrors); ok {
			errorResp.Details = make(map[string]string)
			for _, err := range fieldErrs {
				errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
			}
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// SendCodedError maps a CodedError onto an HTTP status and writes it.
func SendCodedError(w http.ResponseWriter, err error) {
	coded, ok := AsCoded(err)
	if !ok {
		SendErrorResponse(w, CodeUpstream, "An internal error occurred", http.StatusInternalServerError, nil)
		return
	}

	status := http.StatusBadRequest
	switch coded.Code {
	case CodeNotFound:
		status = http.StatusNotFound
	case CodeRateLimited:
		status = http.StatusTooManyRequests
	case CodeMismatch, CodeExpired, CodeExhausted:
		status = http.StatusUnauthorized
	case CodeConflict:
		status = http.StatusConflict
	case CodeUpstream:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(coded)
}
