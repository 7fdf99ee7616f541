// Package ingest decodes uploaded exports into raw rows.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/postpulse/internal/domain/post"
)

// Kind is the container format of an upload.
type Kind string

// Supported kinds.
const (
	KindCSV  Kind = "csv"
	KindXLSX Kind = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseKind maps a user-supplied format name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "text/csv":
		return KindCSV, nil
	case "xlsx", "excel", xlsxContentType:
		return KindXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// KindFromName picks a Kind from a file name, falling back to the content
// type and then to CSV.
func KindFromName(filename, contentType string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return KindXLSX
	case ".csv":
		return KindCSV
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if k, err := ParseKind(mt); err == nil {
			return k
		}
	}
	return KindCSV
}

// Decode reads r as kind and returns one RawRow per data line, keyed by the
// header row.
func Decode(ctx context.Context, r io.Reader, kind Kind) ([]post.RawRow, error) {
	switch kind {
	case KindCSV, "":
		return decodeCSV(ctx, r)
	case KindXLSX:
		return decodeXLSX(ctx, r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}

func decodeCSV(ctx context.Context, r io.Reader) ([]post.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	header = cleanHeader(header)

	var rows []post.RawRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}
		if blank(rec) {
			continue
		}
		rows = append(rows, toRow(header, rec))
	}
	return rows, nil
}

func decodeXLSX(ctx context.Context, r io.Reader) ([]post.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyInput
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %s: %w", ErrMalformed, sheets[0], err)
	}
	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	if len(records) == 0 || blank(records[0]) {
		return nil, ErrEmptyInput
	}

	header := cleanHeader(records[0])
	rows := make([]post.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(rec) {
			continue
		}
		row := toRow(header, rec)
		for _, col := range dateColumns {
			if v, ok := row[col]; ok {
				row[col] = fromSerial(v, date1904)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// dateColumns hold workbook dates, which arrive as day serials once
// number formats are bypassed.
var dateColumns = []string{post.ColPostCreatedAt, post.ColFirstComment}

// maxSerial is 9999-12-31 in the 1900 date system. Larger numbers are
// left alone and read as epoch milliseconds downstream.
const maxSerial = 2958466

const wallClockLayout = "2006-01-02 15:04:05.999999999"

// fromSerial turns a day serial into a zone-less wall-clock string so the
// configured location applies to it like any other naive timestamp.
func fromSerial(v any, date1904 bool) any {
	serial, ok := v.(float64)
	if !ok || serial <= 0 || serial >= maxSerial {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return v
	}
	return t.Format(wallClockLayout)
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = string(bytes.TrimPrefix([]byte(h), utf8BOM))
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// toRow keys rec by header. Short records leave trailing columns nil so the
// column still counts as present; extra cells are dropped.
func toRow(header, rec []string) post.RawRow {
	row := make(post.RawRow, len(header))
	for i, col := range header {
		if col == "" {
			continue
		}
		if i < len(rec) {
			row[col] = typed(rec[i])
		} else {
			row[col] = nil
		}
	}
	return row
}

// typed applies the dynamic typing rules: empty is nil, numeric literals are
// float64, true/false are bool, anything else stays a string.
func typed(cell string) any {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && isNumericLiteral(s) {
		return f
	}
	return cell
}

// isNumericLiteral rejects forms ParseFloat accepts but a spreadsheet cell
// would not mean as a number, such as "Inf", "NaN" or hex floats.
func isNumericLiteral(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}
