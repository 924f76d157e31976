package ingest

import (
	"math"
	"strconv"
	"strings"
)

// SchemaKind selects which canonical field set an upload is normalized into
type SchemaKind string

const (
	// SchemaGenericList is the generic contact list (name/phone/notes)
	SchemaGenericList SchemaKind = "generic_list"
	// SchemaCallQueue is the call queue (record no/name/mobile/email)
	SchemaCallQueue SchemaKind = "call_queue"
)

// CanonicalRow is a raw row mapped onto the canonical schema. Absent string
// fields are empty; an absent or non-numeric sequence number leaves RecordNo
// nil.
type CanonicalRow struct {
	RecordNo *float64
	Name     string
	Phone    string
	Email    string
	Notes    string
}

type canonicalField int

const (
	fieldRecordNo canonicalField = iota
	fieldName
	fieldPhone
	fieldEmail
	fieldNotes
)

// Accepted header aliases per canonical field, in folded form (lowercase,
// whitespace removed). "firstname" covers FirstName, firstName and
// "First Name"; "recordno" covers "Record no" in any casing.
var fieldAliases = map[canonicalField][]string{
	fieldRecordNo: {"recordno", "record"},
	fieldName:     {"name", "firstname"},
	fieldPhone:    {"phone", "mobile", "mobileno", "phonenumber"},
	fieldEmail:    {"email", "emailaddress"},
	fieldNotes:    {"notes", "note"},
}

// Canonical field sets per schema kind
var schemaFields = map[SchemaKind][]canonicalField{
	SchemaGenericList: {fieldName, fieldPhone, fieldNotes},
	SchemaCallQueue:   {fieldRecordNo, fieldName, fieldPhone, fieldEmail},
}

// foldHeader makes header comparison case- and whitespace-insensitive
func foldHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), ""))
}

// Normalize maps a raw row onto the canonical schema for kind. Headers are
// matched against the alias tables after folding; when two headers alias the
// same canonical field, the first one in column order wins. Numeric fields
// that fail strict parsing come out absent.
func Normalize(row RawRow, kind SchemaKind) CanonicalRow {
	aliasToField := make(map[string]canonicalField)
	for _, f := range schemaFields[kind] {
		for _, alias := range fieldAliases[f] {
			aliasToField[alias] = f
		}
	}

	var out CanonicalRow
	seen := make(map[canonicalField]bool)

	for _, header := range row.Headers {
		f, ok := aliasToField[foldHeader(header)]
		if !ok || seen[f] {
			continue
		}
		seen[f] = true

		value, ok := row.Get(header)
		if !ok {
			continue
		}

		switch f {
		case fieldRecordNo:
			out.RecordNo = parseNumber(value)
		case fieldName:
			out.Name = value
		case fieldPhone:
			out.Phone = value
		case fieldEmail:
			out.Email = value
		case fieldNotes:
			out.Notes = value
		}
	}

	return out
}

// parseNumber applies strict numeric-literal parsing. Anything that is not a
// finite number yields nil.
func parseNumber(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
