// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination clamps page requests and builds the "meta" block of
// index responses.
package pagination

const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

// Bounds is the page size policy of one endpoint.
type Bounds struct {
	Default int
	Max     int
}

// DefaultBounds returns [DefaultLimit] and [MaxLimit].
func DefaultBounds() Bounds {
	return Bounds{Default: DefaultLimit, Max: MaxLimit}
}

// Params is a clamped page request.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows before the page.
func (p Params) Offset() int {
	return max(p.Page-1, 0) * p.Limit
}

// Resolve clamps a requested page and size. Non-positive values fall back
// to page one and bounds.Default; oversize requests are lowered to
// bounds.Max rather than reset, so per_page=1000 still yields a full page.
func Resolve(page, limit int, bounds Bounds) Params {
	if bounds.Default < 1 {
		bounds.Default = DefaultLimit
	}
	bounds.Max = max(bounds.Max, bounds.Default)

	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = bounds.Default
	case limit > bounds.Max:
		limit = bounds.Max
	}
	return Params{Page: page, Limit: limit}
}

// Meta describes the page returned. From and To are the 1-based positions
// of the first and last row, both zero on an empty page.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// NewMeta computes the page count and row range for a listing of total rows.
func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit < 1 {
		return meta
	}
	meta.TotalPages = (total + limit - 1) / limit

	offset := Params{Page: page, Limit: limit}.Offset()
	if offset < total {
		meta.From = offset + 1
		meta.To = min(offset+limit, total)
	}
	return meta
}
