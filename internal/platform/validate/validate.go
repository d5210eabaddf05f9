// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate checks submitted attribute values against rule strings
// ("required", "numeric", "min:0") and reports every failure in a single
// [apperr.AppError].
//
// # Architecture
//
// Fields declare rules; the controller runs them through [Check] before any
// value reaches a record. Handlers and stores never validate.
package validate

import (
	"net/url"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.BadRequest("Invalid JSON payload")

// Validator accumulates field failures. It is not safe for concurrent use;
// create one per operation.
type Validator struct {
	errs []apperr.FieldError
}

// Err returns a VALIDATION_ERROR carrying every failure, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

func isURL(value string) bool {
	parsed, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
