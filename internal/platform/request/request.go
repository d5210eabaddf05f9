// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads route parameters and attribute payloads from
// panel requests.
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/validate"
)

// MaxBodyBytes caps attribute payloads.
const MaxBodyBytes = 1 << 20

// Param returns the named chi route parameter, or "".
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// DecodeMap reads a JSON object body into an attribute map.
//
// A missing or empty body yields an empty map so bodiless POSTs still reach
// validation. Arrays, scalars, trailing data and bodies over
// [MaxBodyBytes] are rejected with 400.
func DecodeMap(writer http.ResponseWriter, request *http.Request) (map[string]any, error) {
	input := map[string]any{}
	if request.Body == nil || request.Body == http.NoBody {
		return input, nil
	}

	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, MaxBodyBytes))
	if err := decoder.Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return map[string]any{}, nil
		case errors.As(err, &tooLarge):
			return nil, apperr.BadRequest("Request body too large")
		default:
			return nil, validate.ErrInvalidJSON
		}
	}
	if decoder.More() {
		return nil, validate.ErrInvalidJSON
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}
