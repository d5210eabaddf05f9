// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/panelkit/pkg/convert"
	"github.com/taibuivan/panelkit/pkg/slug"
	"github.com/taibuivan/panelkit/pkg/uuid"
)

// # Rule Strings

// Rule names understood by [Validator.Rules]. Parameterized rules take the
// form "name:arg" or "name:a,b".
const (
	RuleRequired  = "required"
	RuleSometimes = "sometimes"
	RuleNullable  = "nullable"
	RuleString    = "string"
	RuleNumeric   = "numeric"
	RuleInteger   = "integer"
	RuleBoolean   = "boolean"
	RuleEmail     = "email"
	RuleURL       = "url"
	RuleUUID      = "uuid"
	RuleSlug      = "slug"
	RuleMin       = "min"
	RuleMax       = "max"
	RuleBetween   = "between"
	RuleIn        = "in"
	RuleNotIn     = "not_in"
	RuleDate      = "date"
	RuleRegex     = "regex"
)

// Input is the attribute-to-value map a rule set is checked against.
type Input map[string]any

// Check validates every attribute of rules against input and returns a
// VALIDATION_ERROR carrying all failures, or nil.
//
// Attributes are checked in sorted order so error details are stable.
func Check(input Input, rules map[string][]string) error {
	attributes := make([]string, 0, len(rules))
	for attribute := range rules {
		attributes = append(attributes, attribute)
	}
	sort.Strings(attributes)

	v := &Validator{}
	for _, attribute := range attributes {
		value, present := input[attribute]
		v.Rules(attribute, value, present, rules[attribute])
	}
	return v.Err()
}

/*
Rules evaluates rule strings ("required", "numeric", "min:0") against one value.

Parameters:
  - field: the attribute name reported in errors
  - value: the submitted value, possibly nil
  - present: whether the key was part of the submitted input
  - rules: the rule strings to apply

Behaviour:
  - "sometimes" skips every rule when the key is absent.
  - "required" fails on absent, nil, blank or empty values and stops further checks.
  - Absent, nil or blank string values that are not required are not
    checked further, so an optional field may be submitted empty.
  - min, max and between compare numerically when "numeric" or "integer" is
    present or the value is a number, and by length otherwise.
  - Unknown rules are ignored.
*/
func (v *Validator) Rules(field string, value any, present bool, rules []string) *Validator {
	if len(rules) == 0 {
		return v
	}
	if !present && slices.Contains(rules, RuleSometimes) {
		return v
	}
	if slices.Contains(rules, RuleRequired) && isEmpty(value, present) {
		v.add(field, "This field is required")
		return v
	}
	if !present || value == nil || isBlank(value) {
		return v
	}

	numeric := slices.Contains(rules, RuleNumeric) || slices.Contains(rules, RuleInteger) || isNumber(value)

	for _, rule := range rules {
		name, arg, _ := strings.Cut(rule, ":")
		if message := check(name, arg, value, numeric); message != "" {
			v.add(field, message)
		}
	}
	return v
}

// check applies one rule and returns the failure message, or "".
func check(name, arg string, value any, numeric bool) string {
	switch name {
	case RuleRequired, RuleSometimes, RuleNullable:
		return ""

	case RuleString:
		if _, ok := value.(string); !ok {
			return "Must be a string"
		}

	case RuleNumeric:
		if _, ok := numberOf(value); !ok {
			return "Must be a number"
		}

	case RuleInteger:
		f, ok := numberOf(value)
		if !ok || f != math.Trunc(f) {
			return "Must be an integer"
		}

	case RuleBoolean:
		switch b := value.(type) {
		case bool:
		case string:
			if b != "0" && b != "1" && b != "true" && b != "false" {
				return "Must be true or false"
			}
		default:
			if f, ok := numberOf(value); !ok || (f != 0 && f != 1) {
				return "Must be true or false"
			}
		}

	case RuleEmail:
		if _, err := mail.ParseAddress(convert.ToString(value)); err != nil {
			return "Must be a valid email address"
		}

	case RuleURL:
		if !isURL(convert.ToString(value)) {
			return "Must be a valid URL"
		}

	case RuleUUID:
		if !uuid.IsValid(convert.ToString(value)) {
			return "Must be a valid UUID"
		}

	case RuleSlug:
		if !slug.Valid(convert.ToString(value)) {
			return "Must be a valid URL slug (lowercase letters, digits, hyphens only)"
		}

	case RuleMin:
		limit, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return ""
		}
		if size, ok := sizeOf(value, numeric); ok && size < limit {
			return sizeMessage("at least", arg, numeric)
		}

	case RuleMax:
		limit, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return ""
		}
		if size, ok := sizeOf(value, numeric); ok && size > limit {
			return sizeMessage("at most", arg, numeric)
		}

	case RuleBetween:
		low, high, found := strings.Cut(arg, ",")
		if !found {
			return ""
		}
		lo, errLow := strconv.ParseFloat(low, 64)
		hi, errHigh := strconv.ParseFloat(high, 64)
		if errLow != nil || errHigh != nil {
			return ""
		}
		if size, ok := sizeOf(value, numeric); ok && (size < lo || size > hi) {
			return fmt.Sprintf("Must be between %s and %s", low, high)
		}

	case RuleIn:
		if !slices.Contains(strings.Split(arg, ","), convert.ToString(value)) {
			return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(arg, ",", ", "))
		}

	case RuleNotIn:
		if slices.Contains(strings.Split(arg, ","), convert.ToString(value)) {
			return "The selected value is invalid"
		}

	case RuleDate:
		if convert.ToTime(value) == nil {
			return "Must be a valid date"
		}

	case RuleRegex:
		pattern, err := regexp.Compile(arg)
		if err != nil {
			return ""
		}
		if !pattern.MatchString(convert.ToString(value)) {
			return "The format is invalid"
		}
	}
	return ""
}

// # Helpers

func isEmpty(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func isBlank(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

func isNumber(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// numberOf accepts numbers and numeric strings, never booleans.
func numberOf(value any) (float64, bool) {
	if _, isBool := value.(bool); isBool {
		return 0, false
	}
	return convert.AsFloat(value)
}

// sizeOf returns the magnitude compared by min, max and between.
func sizeOf(value any, numeric bool) (float64, bool) {
	if numeric {
		return numberOf(value)
	}
	switch v := value.(type) {
	case string:
		return float64(utf8.RuneCountInString(v)), true
	case []any:
		return float64(len(v)), true
	case map[string]any:
		return float64(len(v)), true
	}
	return numberOf(value)
}

func sizeMessage(bound, arg string, numeric bool) string {
	if numeric {
		return fmt.Sprintf("Must be %s %s", bound, arg)
	}
	return fmt.Sprintf("Must be %s %s characters", bound, arg)
}
