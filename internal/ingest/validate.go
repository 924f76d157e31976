package ingest

import "strings"

// Valid reports whether a canonical row satisfies the required-field set of
// its schema kind.
func Valid(row CanonicalRow, kind SchemaKind) bool {
	switch kind {
	case SchemaCallQueue:
		return row.RecordNo != nil &&
			strings.TrimSpace(row.Name) != "" &&
			strings.TrimSpace(row.Phone) != "" &&
			strings.TrimSpace(row.Email) != ""
	default:
		return strings.TrimSpace(row.Name) != "" &&
			strings.TrimSpace(row.Phone) != ""
	}
}

// ValidateAll filters rows against the required-field constraints of kind,
// trimming the surviving values. Invalid rows are dropped silently; only the
// dropped count is reported. If no row survives, ErrNoValidRows is returned.
func ValidateAll(rows []CanonicalRow, kind SchemaKind) ([]CanonicalRow, int, error) {
	valid := make([]CanonicalRow, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		if !Valid(row, kind) {
			dropped++
			continue
		}

		row.Name = strings.TrimSpace(row.Name)
		row.Phone = strings.TrimSpace(row.Phone)
		row.Email = strings.TrimSpace(row.Email)
		row.Notes = strings.TrimSpace(row.Notes)
		valid = append(valid, row)
	}

	if len(valid) == 0 {
		return nil, dropped, ErrNoValidRows
	}

	return valid, dropped, nil
}
