// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package field_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/platform/sec"
)

var productModel = entity.Model{
	Table:   "products",
	Columns: []string{"name", "price", "featured", "password", "slug", "status", "released_on", "attributes"},
}

func input(values map[string]any) *request.Request {
	return request.New(context.Background(), nil, values, nil)
}

func TestNew_DerivesAttribute(t *testing.T) {
	f := field.Text("Unit Price")
	assert.Equal(t, "unit_price", f.Attribute())
	assert.Equal(t, "Unit Price", f.Name())

	assert.Equal(t, "price", field.Number("Price", "price").Attribute())
}

func TestVisibilityFlags(t *testing.T) {
	tests := []struct {
		name                            string
		field                           *field.Field
		index, detail, creation, update bool
	}{
		{"default", field.Text("Name"), true, true, true, true},
		{"hide from index", field.Text("Name").HideFromIndex(), false, true, true, true},
		{"only on forms", field.Text("Name").OnlyOnForms(), false, false, true, true},
		{"except on forms", field.Text("Name").ExceptOnForms(), true, true, false, false},
		{"only on detail", field.Text("Name").OnlyOnDetail(), false, true, false, false},
		{"textarea", field.Textarea("Body"), false, true, true, true},
		{"password", field.Password("Password"), false, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.index, tt.field.IsShownOnIndex())
			assert.Equal(t, tt.detail, tt.field.IsShownOnDetail())
			assert.Equal(t, tt.creation, tt.field.IsShownOnCreation())
			assert.Equal(t, tt.update, tt.field.IsShownOnUpdate())
		})
	}
}

func TestValidationRules(t *testing.T) {
	f := field.Text("Name").Rules("required").UpdateRules("sometimes")
	assert.Equal(t, []string{"sometimes"}, f.UpdateValidationRules())

	f = field.Text("Name").Rules("required").CreationRules("string")
	assert.ElementsMatch(t, []string{"required", "string"}, f.CreationValidationRules())
	assert.Equal(t, []string{"required"}, f.UpdateValidationRules())

	f = field.Number("Price").Rules("required|numeric", "min:0")
	assert.Equal(t, []string{"required", "numeric", "min:0"}, f.BaseRules())

	f = field.Text("Code").Rules("required|regex:^(a|b)$")
	assert.Equal(t, []string{"required", "regex:^(a|b)$"}, f.BaseRules())

	f = field.Text("Code").Rules("required", "regex:^(a|b)$", "max:1")
	assert.Equal(t, []string{"required", "regex:^(a|b)$", "max:1"}, f.BaseRules())
}

func TestCanSee(t *testing.T) {
	adminOnly := field.Text("Secret").CanSee(func(req *request.Request) bool {
		return req.User() != nil && req.User().UserRole().AtLeast(sec.RoleAdmin)
	})
	assert.False(t, adminOnly.Authorize(input(nil)))

	admin := request.New(context.Background(), &sec.AuthClaims{UserID: "1", Role: string(sec.RoleAdmin)}, nil, nil)
	assert.True(t, adminOnly.Authorize(admin))
	assert.True(t, field.Text("Name").Authorize(input(nil)))
}

func TestFillResolve_RoundTrip(t *testing.T) {
	record := entity.New(productModel)
	name := field.Text("Name")

	require.NoError(t, name.Fill(input(map[string]any{"name": "Widget"}), record))
	name.Resolve(record)

	assert.Equal(t, "Widget", name.Value())
	assert.Nil(t, name.DisplayValue())
}

func TestFill_SkipsAbsentAndReadonly(t *testing.T) {
	record := entity.Hydrate(productModel, map[string]any{"id": "p1", "name": "Widget"})

	require.NoError(t, field.Text("Name").Fill(input(map[string]any{}), record))
	assert.Equal(t, "Widget", record.Get("name"))

	require.NoError(t, field.Text("Name").Readonly().Fill(input(map[string]any{"name": "Gadget"}), record))
	assert.Equal(t, "Widget", record.Get("name"))

	require.NoError(t, field.Text("Name").Nullable().Fill(input(map[string]any{"name": "  "}), record))
	assert.Nil(t, record.Get("name"))
}

func TestResolve_DoesNotMutateRecord(t *testing.T) {
	record := entity.Hydrate(productModel, map[string]any{"id": "p1", "name": "widget"})
	upper := field.Text("Name").ResolveUsing(func(value any, _ *entity.Record) any {
		return "WIDGET"
	})

	upper.Resolve(record)
	assert.Equal(t, "WIDGET", upper.Value())
	assert.Equal(t, "widget", record.Get("name"))
}

func TestNumber_ParsesNumericStrings(t *testing.T) {
	record := entity.New(productModel)
	price := field.Number("Price")

	require.NoError(t, price.Fill(input(map[string]any{"price": "12.5"}), record))
	assert.Equal(t, 12.5, record.Get("price"))

	require.NoError(t, price.Fill(input(map[string]any{"price": ""}), record))
	assert.Nil(t, record.Get("price"))

	require.NoError(t, price.Fill(input(map[string]any{"price": "abc"}), record))
	assert.Equal(t, "abc", record.Get("price"))
}

func TestCurrency_Display(t *testing.T) {
	record := entity.Hydrate(productModel, map[string]any{"id": "p1", "price": 9.5})
	price := field.Currency("Price", "USD")
	price.Resolve(record)

	assert.Equal(t, 9.5, price.Value())
	assert.Equal(t, "USD 9.50", price.DisplayValue())
}

func TestBoolean(t *testing.T) {
	record := entity.Hydrate(productModel, map[string]any{"id": "p1", "featured": int64(1)})
	featured := field.Boolean("Featured")
	featured.Resolve(record)
	assert.Equal(t, true, featured.Value())

	require.NoError(t, featured.Fill(input(map[string]any{"featured": "false"}), record))
	assert.Equal(t, false, record.Get("featured"))
}

func TestPassword(t *testing.T) {
	record := entity.New(productModel)
	password := field.Password("Password")

	require.NoError(t, password.Fill(input(map[string]any{"password": "s3cret!"}), record))
	hashed, ok := record.Get("password").(string)
	require.True(t, ok)
	assert.NotEqual(t, "s3cret!", hashed)
	assert.True(t, sec.VerifyPassword(hashed, "s3cret!"))

	require.NoError(t, password.Fill(input(map[string]any{"password": ""}), record))
	assert.Equal(t, hashed, record.Get("password"))

	password.Resolve(record)
	assert.Nil(t, password.Value())
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   string
	}{
		{"explicit", map[string]any{"slug": "Hello World"}, "hello-world"},
		{"derived from source", map[string]any{"name": "Café Crème"}, "cafe-creme"},
		{"empty slug falls back", map[string]any{"slug": "", "name": "Blue Mug"}, "blue-mug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := entity.New(productModel)
			require.NoError(t, field.Slug("Slug", "name").Fill(input(tt.values), record))
			assert.Equal(t, tt.want, record.Get("slug"))
		})
	}
}

func TestSelect_DisplaysOptionLabel(t *testing.T) {
	record := entity.Hydrate(productModel, map[string]any{"id": "p1", "status": "active"})
	status := field.Select("Status").WithOptions(
		field.Option{Value: "active", Label: "Active"},
		field.Option{Value: "draft", Label: "Draft"},
	)
	status.Resolve(record)

	assert.Equal(t, "active", status.Value())
	assert.Equal(t, "Active", status.DisplayValue())
}

func TestCountryOptions(t *testing.T) {
	country := field.Country("Country")
	assert.Equal(t, "country-field", country.Component())

	var japan string
	for _, option := range country.Options() {
		if option.Value == "JP" {
			japan = option.Label
		}
	}
	assert.Equal(t, "Japan", japan)
}

func TestDate(t *testing.T) {
	record := entity.New(productModel)
	released := field.Date("Released On")

	require.NoError(t, released.Fill(input(map[string]any{"released_on": "2026-03-01"}), record))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), record.Get("released_on"))

	released.Resolve(record)
	assert.Equal(t, "2026-03-01", released.Value())
}

func TestKeyValue(t *testing.T) {
	record := entity.New(productModel)
	attributes := field.KeyValue("Attributes")

	require.NoError(t, attributes.Fill(input(map[string]any{"attributes": map[string]any{"color": "red"}}), record))
	assert.Equal(t, `{"color":"red"}`, record.Get("attributes"))

	attributes.Resolve(record)
	assert.Equal(t, map[string]string{"color": "red"}, attributes.Value())
}

func TestPayload(t *testing.T) {
	f := field.Text("Name").Sortable().Rules("required")
	payload := f.Payload()

	assert.Equal(t, "name", payload.Attribute)
	assert.Equal(t, "text-field", payload.Component)
	assert.True(t, payload.Sortable)
	assert.True(t, payload.Required)
	assert.Nil(t, payload.Meta)
}

func TestUpdatePayloadRequired(t *testing.T) {
	password := field.Password("Password").CreationRules("required", "min:8").UpdateRules("sometimes", "min:8")
	assert.True(t, password.Payload().Required)
	assert.False(t, password.UpdatePayload().Required)

	name := field.Text("Name").Rules("required")
	assert.True(t, name.UpdatePayload().Required)
}

func TestFields(t *testing.T) {
	fields := field.Fields{field.ID(), field.Text("Name"), field.Textarea("Body")}

	assert.Equal(t, []string{"id", "name", "body"}, fields.Attributes())
	assert.NotNil(t, fields.Find("body"))
	assert.Nil(t, fields.Find("missing"))

	record := entity.Hydrate(productModel, map[string]any{"id": "p1", "name": "Widget"})
	values := fields.Resolve(record).Values()
	assert.Equal(t, map[string]any{"id": "p1", "name": "Widget", "body": nil}, values)
}
