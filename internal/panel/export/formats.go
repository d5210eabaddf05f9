// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/taibuivan/panelkit/pkg/convert"
)

type encoder func(body table) ([]byte, error)

var encoders = map[Format]encoder{
	CSV:  encodeCSV,
	XLSX: encodeXLSX,
	JSON: encodeJSON,
	XML:  encodeXML,
	PDF:  encodePDF,
}

var contentTypes = map[Format]string{
	CSV:  "text/csv; charset=utf-8",
	XLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	JSON: "application/json",
	XML:  "application/xml",
	PDF:  "application/pdf",
}

func headers(body table) []string {
	names := make([]string, len(body.Columns))
	for i, c := range body.Columns {
		names[i] = c.Header
	}
	return names
}

func encodeCSV(body table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers(body)); err != nil {
		return nil, err
	}
	for _, row := range body.Rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = convert.ToString(value)
		}
		if err := writer.Write(cells); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func encodeXLSX(body table) ([]byte, error) {
	book := excelize.NewFile()
	defer func() { _ = book.Close() }()

	const sheet = "Sheet1"
	bold, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	header := make([]any, len(body.Columns))
	for i, c := range body.Columns {
		header[i] = c.Header
	}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	if len(body.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(body.Columns), 1)
		if err != nil {
			return nil, err
		}
		if err := book.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, err
		}
	}

	for i, row := range body.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, value := range row {
			values[j] = cellValue(value)
		}
		if err := book.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cellValue keeps numbers and booleans typed and renders everything else as text.
func cellValue(value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case bool, int, int32, int64, float32, float64:
		return v
	}
	return convert.ToString(value)
}

func encodeJSON(body table) ([]byte, error) {
	records := make([]map[string]any, len(body.Rows))
	for i, row := range body.Rows {
		record := make(map[string]any, len(row))
		for j, c := range body.Columns {
			record[c.Attribute] = row[j]
		}
		records[i] = record
	}
	return json.MarshalIndent(records, "", "  ")
}

// encodeXML writes <records><record><attribute>value</attribute>...</record></records>.
func encodeXML(body table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "records"}}
	if err := encoder.EncodeToken(root); err != nil {
		return nil, err
	}
	for _, row := range body.Rows {
		item := xml.StartElement{Name: xml.Name{Local: "record"}}
		if err := encoder.EncodeToken(item); err != nil {
			return nil, err
		}
		for j, c := range body.Columns {
			if err := encoder.EncodeElement(convert.ToString(row[j]), xml.StartElement{Name: xml.Name{Local: c.Attribute}}); err != nil {
				return nil, err
			}
		}
		if err := encoder.EncodeToken(item.End()); err != nil {
			return nil, err
		}
	}
	if err := encoder.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := encoder.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodePDF renders a landscape A4 table with the core Helvetica font.
func encodePDF(body table) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(body.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, translate(body.Title), "", 1, "L", false, 0, "")

	width := 0.0
	if len(body.Columns) > 0 {
		pageWidth, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		width = (pageWidth - left - right) / float64(len(body.Columns))
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range body.Columns {
		pdf.CellFormat(width, 7, translate(c.Header), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range body.Rows {
		for _, value := range row {
			pdf.CellFormat(width, 6, translate(truncate(convert.ToString(value), 40)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
