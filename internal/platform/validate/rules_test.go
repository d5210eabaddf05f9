// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/validate"
)

/*
TestValidator_Rules runs single rule strings against submitted values.
*/
func TestValidator_Rules(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		present  bool
		rules    []string
		hasError bool
	}{
		{"required_missing", nil, false, []string{"required"}, true},
		{"required_blank", "  ", true, []string{"required"}, true},
		{"required_ok", "x", true, []string{"required"}, false},
		{"sometimes_missing", nil, false, []string{"sometimes", "required"}, false},
		{"optional_missing", nil, false, []string{"numeric"}, false},
		{"nullable_nil", nil, true, []string{"nullable", "string"}, false},
		{"numeric_string", "12.5", true, []string{"numeric"}, false},
		{"numeric_word", "twelve", true, []string{"numeric"}, true},
		{"numeric_bool", true, true, []string{"numeric"}, true},
		{"integer_fraction", 1.5, true, []string{"integer"}, true},
		{"integer_whole", float64(3), true, []string{"integer"}, false},
		{"min_numeric_fail", float64(-5), true, []string{"numeric", "min:0"}, true},
		{"min_numeric_ok", float64(0), true, []string{"numeric", "min:0"}, false},
		{"min_length_fail", "ab", true, []string{"string", "min:3"}, true},
		{"max_length_ok", "abc", true, []string{"max:3"}, false},
		{"between_fail", float64(11), true, []string{"numeric", "between:1,10"}, true},
		{"in_ok", "draft", true, []string{"in:draft,published"}, false},
		{"in_fail", "archived", true, []string{"in:draft,published"}, true},
		{"not_in_fail", "root", true, []string{"not_in:root,admin"}, true},
		{"boolean_ok", "1", true, []string{"boolean"}, false},
		{"boolean_fail", "yes", true, []string{"boolean"}, true},
		{"email_fail", "nope", true, []string{"email"}, true},
		{"url_ok", "https://example.com/a", true, []string{"url"}, false},
		{"url_fail", "example.com", true, []string{"url"}, true},
		{"slug_fail", "Not A Slug", true, []string{"slug"}, true},
		{"date_ok", "2026-01-02", true, []string{"date"}, false},
		{"regex_fail", "abc", true, []string{"regex:^[0-9]+$"}, true},
		{"regex_alternation_ok", "b", true, []string{"regex:^(a|b)$"}, false},
		{"regex_alternation_fail", "c", true, []string{"regex:^(a|b)$"}, true},
		{"blank_optional_skipped", "", true, []string{"sometimes", "min:8", "max:72"}, false},
		{"blank_nullable_numeric", " ", true, []string{"nullable", "numeric"}, false},
		{"unknown_rule", "abc", true, []string{"confirmed"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Rules("attr", tt.value, tt.present, tt.rules)
			assert.Equal(t, tt.hasError, v.HasErrors())
		})
	}
}

/*
TestCheck_FieldKeyedErrors verifies Check reports every failing attribute as
a 422 validation error.
*/
func TestCheck_FieldKeyedErrors(t *testing.T) {
	err := validate.Check(
		validate.Input{"name": "Widget", "price": float64(-5)},
		map[string][]string{
			"name":  {"required", "string"},
			"price": {"required", "numeric", "min:0"},
			"sku":   {"required"},
		},
	)

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusUnprocessableEntity, ae.HTTPStatus)

	messages := apperr.FieldMessages(err)
	assert.Contains(t, messages, "price")
	assert.Contains(t, messages, "sku")
	assert.NotContains(t, messages, "name")
}

/*
TestCheck_Passes returns nil when every rule holds.
*/
func TestCheck_Passes(t *testing.T) {
	err := validate.Check(
		validate.Input{"price": "9.99"},
		map[string][]string{"price": {"numeric", "min:0"}},
	)
	assert.NoError(t, err)
}
