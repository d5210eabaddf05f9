// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package controller

import (
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/resource"
)

// Authorizations lists what the caller may do with one record.
type Authorizations struct {
	View        bool `json:"authorizedToView"`
	Update      bool `json:"authorizedToUpdate"`
	Delete      bool `json:"authorizedToDelete"`
	Restore     bool `json:"authorizedToRestore"`
	ForceDelete bool `json:"authorizedToForceDelete"`
}

// Row is one record of an index listing.
type Row struct {
	ID          any            `json:"id"`
	Title       any            `json:"title"`
	Values      map[string]any `json:"values"`
	Display     map[string]any `json:"display,omitempty"`
	SoftDeleted bool           `json:"softDeleted"`
	Authorizations
}

// IndexPayload is the body of an index listing. Paging lives in the
// response meta block.
type IndexPayload struct {
	Resource      resource.Meta     `json:"resource"`
	Fields        []field.Payload   `json:"fields"`
	Rows          []Row             `json:"resources"`
	Search        string            `json:"search"`
	Filters       map[string]string `json:"filters"`
	SortField     string            `json:"sortField"`
	SortDirection string            `json:"sortDirection"`
	Trashed       string            `json:"trashed,omitempty"`
}

// DetailPayload is one record with its resolved detail fields.
type DetailPayload struct {
	Resource             resource.Meta   `json:"resource"`
	ID                   any             `json:"id"`
	Title                any             `json:"title"`
	Fields               []field.Payload `json:"fields"`
	SoftDeleted          bool            `json:"softDeleted"`
	DaysSinceDeletion    *int            `json:"daysSinceDeletion,omitempty"`
	PermanentlyDeletable bool            `json:"permanentlyDeletable"`
	Authorizations
}

// FormPayload is the field schema of a creation or update form.
type FormPayload struct {
	Resource resource.Meta   `json:"resource"`
	ID       any             `json:"id,omitempty"`
	Fields   []field.Payload `json:"fields"`
}

// BulkPayload reports how many records a bulk operation touched.
type BulkPayload struct {
	Count int `json:"count"`
}

// Selection is the body of bulk and action requests.
type Selection struct {
	Keys   []string       `json:"resources"`
	Fields map[string]any `json:"fields"`
}

func payloads(fields field.Fields) []field.Payload {
	return render(fields, (*field.Field).Payload)
}

// updatePayloads marks fields required by their update rules.
func updatePayloads(fields field.Fields) []field.Payload {
	return render(fields, (*field.Field).UpdatePayload)
}

func render(fields field.Fields, payload func(*field.Field) field.Payload) []field.Payload {
	out := make([]field.Payload, len(fields))
	for i, f := range fields {
		out[i] = payload(f)
	}
	return out
}
