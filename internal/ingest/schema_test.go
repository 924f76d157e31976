package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRow(pairs ...string) RawRow {
	row := RawRow{Values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		row.Headers = append(row.Headers, pairs[i])
		row.Values[pairs[i]] = pairs[i+1]
	}
	return row
}

func TestNormalize_GenericListAliases(t *testing.T) {
	tests := []struct {
		name string
		row  RawRow
	}{
		{name: "exact headers", row: rawRow("firstName", "Alice", "phone", "+911234567890", "notes", "vip")},
		{name: "spaced headers", row: rawRow("First Name", "Alice", "Phone", "+911234567890", "Notes", "vip")},
		{name: "uppercase headers", row: rawRow("FIRSTNAME", "Alice", "PHONE", "+911234567890", "NOTES", "vip")},
		{name: "mobile alias", row: rawRow("name", "Alice", "mobile", "+911234567890", "note", "vip")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.row, SchemaGenericList)
			assert.Equal(t, "Alice", got.Name)
			assert.Equal(t, "+911234567890", got.Phone)
			assert.Equal(t, "vip", got.Notes)
		})
	}
}

func TestNormalize_CallQueueAliases(t *testing.T) {
	row := rawRow(
		"Record no", "3",
		"Name", "Bob",
		"Mobile no", "+911234567891",
		"Email", "bob@example.com",
	)

	got := Normalize(row, SchemaCallQueue)

	require.NotNil(t, got.RecordNo)
	assert.Equal(t, float64(3), *got.RecordNo)
	assert.Equal(t, "Bob", got.Name)
	assert.Equal(t, "+911234567891", got.Phone)
	assert.Equal(t, "bob@example.com", got.Email)
}

func TestNormalize_FirstMatchWins(t *testing.T) {
	// Two headers alias the same canonical field; column order decides
	row := rawRow(
		"Name", "from name column",
		"FirstName", "from firstname column",
		"Phone", "+911234567890",
	)

	got := Normalize(row, SchemaGenericList)
	assert.Equal(t, "from name column", got.Name)
}

func TestNormalize_UnknownHeadersIgnored(t *testing.T) {
	row := rawRow(
		"firstName", "Alice",
		"phone", "+911234567890",
		"department", "sales",
	)

	got := Normalize(row, SchemaGenericList)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "+911234567890", got.Phone)
	assert.Empty(t, got.Notes)
}

func TestNormalize_RecordNoOutsideSchema(t *testing.T) {
	// The generic list has no sequence field, so a record number column
	// in the source is not mapped
	row := rawRow(
		"Record no", "1",
		"firstName", "Alice",
		"phone", "+911234567890",
	)

	got := Normalize(row, SchemaGenericList)
	assert.Nil(t, got.RecordNo)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{name: "integer", input: "12", want: ptrFloat(12)},
		{name: "decimal", input: "7.5", want: ptrFloat(7.5)},
		{name: "padded", input: "  42  ", want: ptrFloat(42)},
		{name: "negative", input: "-3", want: ptrFloat(-3)},
		{name: "junk", input: "abc", want: nil},
		{name: "empty", input: "", want: nil},
		{name: "nan", input: "NaN", want: nil},
		{name: "infinity", input: "Inf", want: nil},
		{name: "trailing text", input: "12 units", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNumber(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func ptrFloat(v float64) *float64 { return &v }
