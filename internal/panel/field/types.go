// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package field

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/platform/sec"
	"github.com/taibuivan/panelkit/pkg/convert"
	"github.com/taibuivan/panelkit/pkg/slug"
)

// # Identity & Text

// ID is the primary key column, readonly and absent from forms.
func ID(name ...string) *Field {
	label := "ID"
	if len(name) > 0 {
		label = name[0]
	}
	return New("id-field", label, entity.ColumnID).Sortable().Readonly().ExceptOnForms()
}

// Text is a single-line string.
func Text(name string, attribute ...string) *Field {
	return New("text-field", name, attribute...)
}

// Textarea is a multi-line string, hidden from index listings.
func Textarea(name string, attribute ...string) *Field {
	return New("textarea-field", name, attribute...).HideFromIndex()
}

// Markdown is markdown source, hidden from index listings.
func Markdown(name string, attribute ...string) *Field {
	return New("markdown-field", name, attribute...).HideFromIndex()
}

// Code is a code or JSON blob, hidden from index listings.
func Code(name string, attribute ...string) *Field {
	return New("code-field", name, attribute...).HideFromIndex().WithMeta("language", "json")
}

// Email is an e-mail address rendered as a mailto link.
func Email(name string, attribute ...string) *Field {
	return New("email-field", name, attribute...)
}

// URL is a link.
func URL(name string, attribute ...string) *Field {
	return New("url-field", name, attribute...)
}

// Color is a hex color value.
func Color(name string, attribute ...string) *Field {
	return New("color-field", name, attribute...)
}

// Hidden carries a value through forms without rendering it.
func Hidden(name string, attribute ...string) *Field {
	return New("hidden-field", name, attribute...).OnlyOnForms()
}

// # Numbers

// Number is a numeric value. Numeric strings are stored as numbers.
func Number(name string, attribute ...string) *Field {
	f := New("number-field", name, attribute...)
	return f.FillUsing(func(req *request.Request, record *entity.Record, attr string) error {
		value, ok := req.Input(attr)
		if !ok {
			return nil
		}
		if s, isString := value.(string); isString {
			if strings.TrimSpace(s) == "" {
				record.Set(attr, nil)
				return nil
			}
			if parsed, numeric := convert.AsFloat(s); numeric {
				value = parsed
			}
		}
		record.Set(attr, value)
		return nil
	})
}

// Currency is a number displayed with two decimals and a currency code.
func Currency(name string, currency string, attribute ...string) *Field {
	return Number(name, attribute...).
		WithMeta("currency", currency).
		DisplayUsing(func(value any, _ *entity.Record) any {
			amount, ok := convert.AsFloat(value)
			if !ok {
				return nil
			}
			return fmt.Sprintf("%s %.2f", currency, amount)
		})
}

// Boolean is a true/false toggle. Driver integers are resolved to booleans.
func Boolean(name string, attribute ...string) *Field {
	f := New("boolean-field", name, attribute...)
	f.ResolveUsing(func(value any, _ *entity.Record) any { return convert.AsBool(value) })
	return f.FillUsing(func(req *request.Request, record *entity.Record, attr string) error {
		if value, ok := req.Input(attr); ok {
			record.Set(attr, convert.AsBool(value))
		}
		return nil
	})
}

// # Secrets

// Password is only shown on forms. Input is hashed with bcrypt before it
// reaches the record; an empty input leaves the stored hash untouched.
func Password(name string, attribute ...string) *Field {
	f := New("password-field", name, attribute...).OnlyOnForms()
	f.ResolveUsing(func(any, *entity.Record) any { return nil })
	return f.FillUsing(func(req *request.Request, record *entity.Record, attr string) error {
		value, ok := req.Input(attr)
		if !ok {
			return nil
		}
		plain := convert.ToString(value)
		if plain == "" {
			return nil
		}
		hashed, err := sec.HashPassword(plain)
		if err != nil {
			return err
		}
		record.Set(attr, hashed)
		return nil
	})
}

// # Choices

// Select is a single choice among options. Its display value is the option label.
func Select(name string, attribute ...string) *Field {
	f := New("select-field", name, attribute...)
	return f.DisplayUsing(func(value any, _ *entity.Record) any {
		key := convert.ToString(value)
		for _, option := range f.options {
			if option.Value == key {
				return option.Label
			}
		}
		return value
	})
}

// Badge renders a value as a colored badge. types maps values to badge styles.
func Badge(name string, types map[string]string, attribute ...string) *Field {
	return New("badge-field", name, attribute...).ExceptOnForms().WithMeta("types", types)
}

// Status renders progress of a long running value ("pending", "failed").
func Status(name string, loading, failed []string, attribute ...string) *Field {
	return New("status-field", name, attribute...).
		ExceptOnForms().
		WithMeta("loadingWords", loading).
		WithMeta("failedWords", failed)
}

// countryCodes is the region list offered by [Country].
var countryCodes = []string{
	"AU", "BR", "CA", "CN", "DE", "ES", "FR", "GB", "ID", "IN",
	"IT", "JP", "KR", "MX", "NL", "PH", "SG", "TH", "US", "VN",
}

// Country is a select over ISO 3166 region codes with English names.
func Country(name string, attribute ...string) *Field {
	namer := display.English.Regions()
	options := make([]Option, 0, len(countryCodes))
	for _, code := range countryCodes {
		region := language.MustParseRegion(code)
		options = append(options, Option{Value: code, Label: namer.Name(region)})
	}
	f := Select(name, attribute...).WithOptions(options...)
	f.component = "country-field"
	return f
}

// timezones is the zone list offered by [Timezone].
var timezones = []string{
	"UTC", "America/New_York", "America/Los_Angeles", "America/Sao_Paulo",
	"Europe/London", "Europe/Berlin", "Asia/Tokyo", "Asia/Ho_Chi_Minh",
	"Asia/Singapore", "Australia/Sydney",
}

// Timezone is a select over IANA zone names.
func Timezone(name string, attribute ...string) *Field {
	options := make([]Option, len(timezones))
	for i, zone := range timezones {
		options[i] = Option{Value: zone, Label: zone}
	}
	f := Select(name, attribute...).WithOptions(options...)
	f.component = "timezone-field"
	return f
}

// # Time

// Date is a calendar date stored as midnight UTC and resolved as YYYY-MM-DD.
func Date(name string, attribute ...string) *Field {
	return timeField("date-field", time.DateOnly, name, attribute...)
}

// DateTime is a timestamp resolved as RFC 3339.
func DateTime(name string, attribute ...string) *Field {
	return timeField("date-time-field", time.RFC3339, name, attribute...)
}

func timeField(component, layout, name string, attribute ...string) *Field {
	f := New(component, name, attribute...).Sortable()
	f.ResolveUsing(func(value any, _ *entity.Record) any {
		if t := convert.ToTime(value); t != nil {
			return t.UTC().Format(layout)
		}
		return nil
	})
	return f.FillUsing(func(req *request.Request, record *entity.Record, attr string) error {
		value, ok := req.Input(attr)
		if !ok {
			return nil
		}
		if t := convert.ToTime(value); t != nil {
			record.Set(attr, t.UTC())
			return nil
		}
		record.Set(attr, nil)
		return nil
	})
}

// # Derived Values

// Slug is a URL slug. When the input is empty it is derived from the source
// attribute's input, falling back to the record's current source value.
func Slug(name, source string, attribute ...string) *Field {
	f := New("slug-field", name, attribute...).WithMeta("from", source)
	return f.FillUsing(func(req *request.Request, record *entity.Record, attr string) error {
		if value, ok := req.Input(attr); ok && convert.ToString(value) != "" {
			record.Set(attr, slug.From(convert.ToString(value)))
			return nil
		}
		if value, ok := req.Input(source); ok {
			record.Set(attr, slug.From(convert.ToString(value)))
			return nil
		}
		if !record.Has(attr) && record.Get(source) != nil {
			record.Set(attr, slug.From(convert.ToString(record.Get(source))))
		}
		return nil
	})
}

// KeyValue is a flat string map persisted as JSON text.
func KeyValue(name string, attribute ...string) *Field {
	f := New("key-value-field", name, attribute...).HideFromIndex()
	f.ResolveUsing(func(value any, _ *entity.Record) any {
		text := convert.ToString(value)
		if text == "" {
			return map[string]string{}
		}
		decoded := map[string]string{}
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return map[string]string{}
		}
		return decoded
	})
	return f.FillUsing(func(req *request.Request, record *entity.Record, attr string) error {
		value, ok := req.Input(attr)
		if !ok {
			return nil
		}
		if value == nil {
			record.Set(attr, nil)
			return nil
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("field: encode %s: %w", attr, err)
		}
		record.Set(attr, string(encoded))
		return nil
	})
}
