package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies the tabular encoding of an upload
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromExtension maps an uploaded file name to its parse format.
// Legacy .xls files go through the spreadsheet path as well.
func FormatFromExtension(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx", ".xls":
		return FormatXLSX, true
	default:
		return "", false
	}
}

// RawRow is one parsed row keyed by the original header strings. Headers keeps
// the column order of the source; Values holds the raw cell text. A cell that
// could not be read is simply absent from Values.
type RawRow struct {
	Headers []string
	Values  map[string]string
}

// Get returns the raw value for a header and whether it was present
func (r RawRow) Get(header string) (string, bool) {
	v, ok := r.Values[header]
	return v, ok
}

// ParseRows decodes the stream into rows keyed by the verbatim header strings,
// preserving row order. The first record of the source is the header row.
// It returns a *ParseError only when the stream as a whole cannot be decoded
// as the declared format; individual malformed rows are skipped.
func ParseRows(r io.Reader, format Format) ([]RawRow, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r)
	case FormatXLSX:
		return parseXLSX(r)
	default:
		return nil, &ParseError{Format: format, Err: errors.New("unsupported format")}
	}
}

func parseCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, &ParseError{Format: FormatCSV, Err: err}
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// Single unreadable row, defer to validation
				continue
			}
			return nil, &ParseError{Format: FormatCSV, Err: err}
		}

		rows = append(rows, buildRow(headers, record))
	}

	return rows, nil
}

func parseXLSX(r io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}

	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	rows := make([]RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, buildRow(headers, record))
	}

	return rows, nil
}

// buildRow zips a record onto the header row. Short records leave trailing
// fields absent; extra cells beyond the header row are dropped.
func buildRow(headers, record []string) RawRow {
	row := RawRow{
		Headers: headers,
		Values:  make(map[string]string, len(headers)),
	}

	for i, h := range headers {
		if i >= len(record) {
			break
		}
		row.Values[h] = record[i]
	}

	return row
}
