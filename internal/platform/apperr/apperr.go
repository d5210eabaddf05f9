// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error vocabulary shared by the panel pipeline and the
HTTP layer.

Operations return an [*AppError] for every outcome a client should see
(missing resource, policy denial, failed validation); respond.Error renders
it. Anything else is treated as an internal failure and logged with its
cause.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes carried in the "code" member of error responses.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is a client-facing failure. Cause is logged server side and never
// serialised.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError is one failed rule on one attribute.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # Constructors

// NotFound reports a missing resource type or record: NotFound("Product")
// reads "Product not found".
func NotFound(what string) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, what+" not found")
}

// Unauthorized means no caller, or a caller whose token failed verification.
func Unauthorized(msg string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, msg)
}

// Forbidden means a policy denied the ability.
func Forbidden(msg string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, msg)
}

// Conflict reports unique constraint and foreign key violations.
func Conflict(msg string) *AppError {
	return newError(http.StatusConflict, CodeConflict, msg)
}

// ValidationError is the 422 carrying every failed rule. Validation runs
// before any value is filled into a record, so nothing has been written.
func ValidationError(msg string, details ...FieldError) *AppError {
	err := newError(http.StatusUnprocessableEntity, CodeValidation, msg)
	err.Details = details
	return err
}

// BadRequest reports input that could not be decoded at all.
func BadRequest(msg string) *AppError {
	return newError(http.StatusBadRequest, CodeBadRequest, msg)
}

// RateLimited is the 429 sent by the rate limiter.
func RateLimited(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// Internal hides cause behind a generic 500.
func Internal(cause error) *AppError {
	err := newError(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// # Inspection

// As returns the [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsAppError reports whether err's chain holds an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// FieldMessages groups validation details by attribute, or returns nil
// when err carries none.
func FieldMessages(err error) map[string][]string {
	appErr := As(err)
	if appErr == nil || len(appErr.Details) == 0 {
		return nil
	}
	grouped := make(map[string][]string, len(appErr.Details))
	for _, detail := range appErr.Details {
		grouped[detail.Field] = append(grouped[detail.Field], detail.Message)
	}
	return grouped
}
