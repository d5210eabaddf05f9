// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package field provides the declarative descriptor of one displayable and
editable entity attribute.

A [Field] carries display flags, validation rules, optional resolve/fill/display
callbacks and an optional visibility callback. Fields are built fresh on every
call to a resource's Fields method and hold per-request resolved state.

Architecture:

  - Resolve: reads the attribute from a record into the field's value slot.
  - Fill: writes request input into the record. This is the single write path
    from user input into an entity.
  - Authorize: gates the field out of the available set.

Validation rules are plain strings ("required", "numeric", "min:0") evaluated by
[validate.Validator.Rules].
*/
package field

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/request"
)

// # Callbacks

// ResolveFunc maps a raw attribute value into the value exposed to clients.
type ResolveFunc func(value any, record *entity.Record) any

// FillFunc decides what, if anything, to write into the record for attribute.
type FillFunc func(req *request.Request, record *entity.Record, attribute string) error

// DisplayFunc formats the resolved value for display.
type DisplayFunc func(value any, record *entity.Record) any

// SeeFunc reports whether the field is visible for the request.
type SeeFunc func(req *request.Request) bool

// Option is one choice of a select-like field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// # Field

// Field describes one attribute of a resource.
//
// # Concurrency
//
// Field is not safe for concurrent use; Resolve mutates its value slot.
type Field struct {
	attribute string
	name      string
	component string

	rules         []string
	creationRules []string
	updateRules   []string

	showOnIndex    bool
	showOnDetail   bool
	showOnCreation bool
	showOnUpdate   bool

	searchable bool
	sortable   bool
	readonly   bool
	nullable   bool

	options      []Option
	meta         map[string]any
	resolveUsing ResolveFunc
	fillUsing    FillFunc
	displayUsing DisplayFunc
	canSee       SeeFunc

	value        any
	displayValue any
}

// New creates a field visible in every context.
// When attribute is omitted it is derived from name ("Unit Price" → "unit_price").
func New(component, name string, attribute ...string) *Field {
	attr := attributeFromName(name)
	if len(attribute) > 0 && attribute[0] != "" {
		attr = attribute[0]
	}
	return &Field{
		attribute:      attr,
		name:           name,
		component:      component,
		showOnIndex:    true,
		showOnDetail:   true,
		showOnCreation: true,
		showOnUpdate:   true,
		meta:           map[string]any{},
	}
}

// Attribute returns the entity attribute this field maps.
func (f *Field) Attribute() string { return f.attribute }

// Name returns the display label.
func (f *Field) Name() string { return f.name }

// Component returns the rendering hint.
func (f *Field) Component() string { return f.component }

// # Visibility

func (f *Field) IsShownOnIndex() bool    { return f.showOnIndex }
func (f *Field) IsShownOnDetail() bool   { return f.showOnDetail }
func (f *Field) IsShownOnCreation() bool { return f.showOnCreation }
func (f *Field) IsShownOnUpdate() bool   { return f.showOnUpdate }

// HideFromIndex removes the field from index listings.
func (f *Field) HideFromIndex() *Field { f.showOnIndex = false; return f }

// HideFromDetail removes the field from the detail view.
func (f *Field) HideFromDetail() *Field { f.showOnDetail = false; return f }

// HideWhenCreating removes the field from the creation form.
func (f *Field) HideWhenCreating() *Field { f.showOnCreation = false; return f }

// HideWhenUpdating removes the field from the update form.
func (f *Field) HideWhenUpdating() *Field { f.showOnUpdate = false; return f }

// OnlyOnIndex shows the field on index listings only.
func (f *Field) OnlyOnIndex() *Field { return f.only(true, false, false, false) }

// OnlyOnDetail shows the field on the detail view only.
func (f *Field) OnlyOnDetail() *Field { return f.only(false, true, false, false) }

// OnlyOnForms shows the field on creation and update forms only.
func (f *Field) OnlyOnForms() *Field { return f.only(false, false, true, true) }

// ExceptOnForms shows the field everywhere but the forms.
func (f *Field) ExceptOnForms() *Field { return f.only(true, true, false, false) }

func (f *Field) only(index, detail, creation, update bool) *Field {
	f.showOnIndex, f.showOnDetail, f.showOnCreation, f.showOnUpdate = index, detail, creation, update
	return f
}

// # Behaviour Flags

func (f *Field) Sortable() *Field   { f.sortable = true; return f }
func (f *Field) Searchable() *Field { f.searchable = true; return f }
func (f *Field) Readonly() *Field   { f.readonly = true; return f }
func (f *Field) Nullable() *Field   { f.nullable = true; return f }

func (f *Field) IsSortable() bool   { return f.sortable }
func (f *Field) IsSearchable() bool { return f.searchable }
func (f *Field) IsReadonly() bool   { return f.readonly }
func (f *Field) IsNullable() bool   { return f.nullable }

// WithMeta attaches a rendering hint.
func (f *Field) WithMeta(key string, value any) *Field { f.meta[key] = value; return f }

// Meta returns a rendering hint.
func (f *Field) Meta(key string) any { return f.meta[key] }

// WithOptions sets the choices of a select-like field.
func (f *Field) WithOptions(options ...Option) *Field { f.options = options; return f }

// Options returns the choices of a select-like field.
func (f *Field) Options() []Option { return f.options }

// # Validation Rules

// Rules sets the base rules applied on both creation and update.
func (f *Field) Rules(rules ...string) *Field { f.rules = splitRules(rules); return f }

// CreationRules sets rules added to the base rules on creation.
func (f *Field) CreationRules(rules ...string) *Field { f.creationRules = splitRules(rules); return f }

// UpdateRules sets rules that replace the base rules on update.
func (f *Field) UpdateRules(rules ...string) *Field { f.updateRules = splitRules(rules); return f }

// BaseRules returns the rules set through [Field.Rules].
func (f *Field) BaseRules() []string { return slices.Clone(f.rules) }

// CreationValidationRules returns the base rules united with the creation rules.
func (f *Field) CreationValidationRules() []string {
	merged := slices.Clone(f.rules)
	for _, rule := range f.creationRules {
		if !slices.Contains(merged, rule) {
			merged = append(merged, rule)
		}
	}
	return merged
}

// UpdateValidationRules returns the update rules when any are set, otherwise
// the base rules. Update rules replace the base rules; they are not merged.
func (f *Field) UpdateValidationRules() []string {
	if len(f.updateRules) > 0 {
		return slices.Clone(f.updateRules)
	}
	return slices.Clone(f.rules)
}

// # Callbacks

func (f *Field) ResolveUsing(fn ResolveFunc) *Field { f.resolveUsing = fn; return f }
func (f *Field) FillUsing(fn FillFunc) *Field       { f.fillUsing = fn; return f }
func (f *Field) DisplayUsing(fn DisplayFunc) *Field { f.displayUsing = fn; return f }

// CanSee gates the field behind a per-request check.
func (f *Field) CanSee(fn SeeFunc) *Field { f.canSee = fn; return f }

// # Pipeline

// Authorize reports whether the field is available to the request.
func (f *Field) Authorize(req *request.Request) bool {
	return f.canSee == nil || f.canSee(req)
}

// Resolve loads the attribute from record into the field's value slot.
// It never writes to the record.
func (f *Field) Resolve(record *entity.Record) {
	raw := record.Get(f.attribute)
	if f.resolveUsing != nil {
		f.value = f.resolveUsing(raw, record)
	} else {
		f.value = raw
	}

	f.displayValue = nil
	if f.displayUsing != nil {
		f.displayValue = f.displayUsing(f.value, record)
	}
}

// Fill writes the request input for this field into record.
//
// Readonly fields are skipped. Without a fill callback only keys present in
// the request body are written, so partial updates leave other attributes
// untouched. Empty strings become nil on nullable fields.
func (f *Field) Fill(req *request.Request, record *entity.Record) error {
	if f.readonly {
		return nil
	}
	if f.fillUsing != nil {
		return f.fillUsing(req, record, f.attribute)
	}

	value, ok := req.Input(f.attribute)
	if !ok {
		return nil
	}
	if f.nullable {
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			value = nil
		}
	}
	record.Set(f.attribute, value)
	return nil
}

// Value returns the resolved value.
func (f *Field) Value() any { return f.value }

// DisplayValue returns the formatted value, or nil without a display callback.
func (f *Field) DisplayValue() any { return f.displayValue }

// # Serialization

// Payload is the JSON shape of a field sent to clients.
type Payload struct {
	Attribute    string         `json:"attribute"`
	Name         string         `json:"name"`
	Component    string         `json:"component"`
	Value        any            `json:"value"`
	DisplayValue any            `json:"displayValue,omitempty"`
	Sortable     bool           `json:"sortable"`
	Searchable   bool           `json:"searchable"`
	Readonly     bool           `json:"readonly"`
	Nullable     bool           `json:"nullable"`
	Required     bool           `json:"required"`
	Options      []Option       `json:"options,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// Payload returns the client representation of the field. Required follows
// the creation rules.
func (f *Field) Payload() Payload {
	return f.payload(f.CreationValidationRules())
}

// UpdatePayload is [Field.Payload] for the update form, where Required
// follows the update rules.
func (f *Field) UpdatePayload() Payload {
	return f.payload(f.UpdateValidationRules())
}

func (f *Field) payload(rules []string) Payload {
	var meta map[string]any
	if len(f.meta) > 0 {
		meta = f.meta
	}
	return Payload{
		Attribute:    f.attribute,
		Name:         f.name,
		Component:    f.component,
		Value:        f.value,
		DisplayValue: f.displayValue,
		Sortable:     f.sortable,
		Searchable:   f.searchable,
		Readonly:     f.readonly,
		Nullable:     f.nullable,
		Required:     slices.Contains(rules, "required"),
		Options:      f.options,
		Meta:         meta,
	}
}

// MarshalJSON implements [json.Marshaler].
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Payload())
}

// # Field Sets

// Fields is an ordered field list.
type Fields []*Field

// Filter returns the fields matching keep, preserving order.
func (fs Fields) Filter(keep func(*Field) bool) Fields {
	result := make(Fields, 0, len(fs))
	for _, f := range fs {
		if keep(f) {
			result = append(result, f)
		}
	}
	return result
}

// Find returns the field mapping attribute, or nil.
func (fs Fields) Find(attribute string) *Field {
	for _, f := range fs {
		if f.attribute == attribute {
			return f
		}
	}
	return nil
}

// Attributes returns the mapped attributes in order.
func (fs Fields) Attributes() []string {
	attributes := make([]string, len(fs))
	for i, f := range fs {
		attributes[i] = f.attribute
	}
	return attributes
}

// Resolve resolves every field against record.
func (fs Fields) Resolve(record *entity.Record) Fields {
	for _, f := range fs {
		f.Resolve(record)
	}
	return fs
}

// Values returns the resolved values keyed by attribute.
func (fs Fields) Values() map[string]any {
	values := make(map[string]any, len(fs))
	for _, f := range fs {
		values[f.attribute] = f.value
	}
	return values
}

// splitRules accepts both ("required", "min:0") and ("required|min:0").
// A regex rule takes the rest of its string, so its pattern may contain "|".
func splitRules(rules []string) []string {
	var result []string
	for _, rule := range rules {
		for rule != "" {
			part, rest, _ := strings.Cut(rule, "|")
			if strings.HasPrefix(strings.TrimSpace(part), "regex:") {
				part, rest = rule, ""
			}
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
			rule = rest
		}
	}
	return result
}

func attributeFromName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
