// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package export snapshots a resource query into a downloadable file.

Supported formats are CSV, XLSX, JSON, XML and PDF. Exports are capped at a
maximum record count; requested limits above the cap are clamped to it.

Failures are reported through [Result] instead of an error so a broken export
never surfaces as a server fault.
*/
package export

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/platform/constants"
	"github.com/taibuivan/panelkit/internal/store"
)

// Format names an export file type.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	JSON Format = "json"
	XML  Format = "xml"
	PDF  Format = "pdf"
)

// ParseFormat returns the format named by s. "excel" is accepted for XLSX.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, true
	case "xlsx", "excel":
		return XLSX, true
	case "json":
		return JSON, true
	case "xml":
		return XML, true
	case "pdf":
		return PDF, true
	}
	return "", false
}

// DefaultExcluded are attributes never written to an export.
var DefaultExcluded = []string{"password", "remember_token"}

// TransformFunc rewrites one exported value.
type TransformFunc func(value any, record *entity.Record) any

// Config is the per-resource export configuration.
type Config struct {
	// MaxRecords of zero uses the service cap. It never raises the service cap.
	MaxRecords int
	// Fields restricts the export to these attributes, in order.
	Fields []string
	// Excluded attributes are dropped on top of [DefaultExcluded].
	Excluded []string
	// Transforms rewrite values per attribute.
	Transforms map[string]TransformFunc
}

// Exportable is implemented by resources customizing their exports.
type Exportable interface {
	ExportConfig() Config
}

// Result is the outcome of one export.
type Result struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"-"`
	Content     []byte `json:"-"`
	Count       int    `json:"count"`
}

func failed(message string) Result { return Result{Success: false, Message: message} }

// column is one exported attribute and its header.
type column struct {
	Attribute string
	Header    string
}

// table is the format-independent export body.
type table struct {
	Title   string
	Columns []column
	Rows    [][]any
}

// # Service

// Service runs exports against the store.
type Service struct {
	store      store.Store
	logger     *slog.Logger
	maxRecords int
	now        func() time.Time
}

// NewService builds the export service with a global record cap.
func NewService(st store.Store, logger *slog.Logger, maxRecords int) *Service {
	if maxRecords <= 0 {
		maxRecords = constants.DefaultExportMaxRecords
	}
	return &Service{store: st, logger: logger, maxRecords: maxRecords, now: time.Now}
}

// Limit clamps a requested row count to the caps of t.
func (service *Service) Limit(t *resource.Type, requested int) int {
	limit := service.maxRecords
	if cfg := configOf(t); cfg.MaxRecords > 0 && cfg.MaxRecords < limit {
		limit = cfg.MaxRecords
	}
	if requested > 0 && requested < limit {
		return requested
	}
	return limit
}

func configOf(t *resource.Type) Config {
	if exportable, ok := t.Resource().(Exportable); ok {
		return exportable.ExportConfig()
	}
	return Config{}
}

/*
Export runs q (already carrying search, filters and sorts) and encodes the
rows in format.

Parameters:
  - t: the resource being exported
  - req: the caller, used for field visibility
  - q: the listing query; its limit and offset are replaced
  - format: the output format
  - limit: the requested row count, clamped by [Service.Limit]

Returns:
  - Result: Success=false with a message when anything fails
*/
func (service *Service) Export(ctx context.Context, t *resource.Type, req *request.Request, q store.Query, format Format, limit int) Result {
	encode, ok := encoders[format]
	if !ok {
		return failed(fmt.Sprintf("Unsupported export format %q", format))
	}

	q.Limit = service.Limit(t, limit)
	q.Offset = 0

	records, _, err := service.store.Select(ctx, t.Model(), q)
	if err != nil {
		service.logger.ErrorContext(ctx, "export_failed",
			slog.String("resource", t.URIKey()),
			slog.String("format", string(format)),
			slog.Any("error", err),
		)
		return failed("Export failed: " + err.Error())
	}

	body := service.table(t, req, records)
	content, err := encode(body)
	if err != nil {
		service.logger.ErrorContext(ctx, "export_failed",
			slog.String("resource", t.URIKey()),
			slog.String("format", string(format)),
			slog.Any("error", err),
		)
		return failed("Export failed: " + err.Error())
	}

	service.logger.InfoContext(ctx, "export_completed",
		slog.String("resource", t.URIKey()),
		slog.String("format", string(format)),
		slog.Int("count", len(records)),
	)

	return Result{
		Success:     true,
		Message:     fmt.Sprintf("Exported %d %s", len(records), strings.ToLower(t.Label())),
		Filename:    service.filename(t, format),
		ContentType: contentTypes[format],
		Content:     content,
		Count:       len(records),
	}
}

// table resolves the exported columns of every record.
func (service *Service) table(t *resource.Type, req *request.Request, records []*entity.Record) table {
	cfg := configOf(t)
	fields := t.DetailFields(req)

	var columns []column
	if len(cfg.Fields) > 0 {
		for _, attribute := range cfg.Fields {
			header := attribute
			if f := fields.Find(attribute); f != nil {
				header = f.Name()
			}
			columns = append(columns, column{Attribute: attribute, Header: header})
		}
	} else {
		for _, f := range fields {
			columns = append(columns, column{Attribute: f.Attribute(), Header: f.Name()})
		}
	}
	columns = slices.DeleteFunc(columns, func(c column) bool {
		return slices.Contains(DefaultExcluded, c.Attribute) || slices.Contains(cfg.Excluded, c.Attribute)
	})

	rows := make([][]any, len(records))
	for i, record := range records {
		resolved := t.DetailFields(req).Resolve(record)
		row := make([]any, len(columns))
		for j, c := range columns {
			value := record.Get(c.Attribute)
			if f := resolved.Find(c.Attribute); f != nil {
				value = f.Value()
				if display := f.DisplayValue(); display != nil {
					value = display
				}
			}
			if transform, ok := cfg.Transforms[c.Attribute]; ok {
				value = transform(value, record)
			}
			row[j] = value
		}
		rows[i] = row
	}

	return table{Title: t.Label(), Columns: columns, Rows: rows}
}

func (service *Service) filename(t *resource.Type, format Format) string {
	return fmt.Sprintf("%s-%s.%s", t.URIKey(), service.now().UTC().Format("20060102-150405"), format)
}
