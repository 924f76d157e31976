package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dialdesk/dialdesk-be/internal/api/domain"
	"github.com/dialdesk/dialdesk-be/internal/distribute"
	"github.com/dialdesk/dialdesk-be/internal/ingest"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "assignment not found",
			err:         domain.ErrAssignmentNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "assignment not found",
		},
		{
			name:        "no valid rows",
			err:         ingest.ErrNoValidRows,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "no valid records found",
		},
		{
			name:        "no agents",
			err:         distribute.ErrNoAgents,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "no agents found, create agents first",
		},
		{
			name:        "no records",
			err:         distribute.ErrNoRecords,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "no call records to distribute",
		},
		{
			name:       "parse error",
			err:        &ingest.ParseError{Format: ingest.FormatXLSX, Err: errors.New("zip: not a valid zip file")},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrapped parse error",
			err:        errors.Join(errors.New("upload rejected"), &ingest.ParseError{Format: ingest.FormatCSV, Err: errors.New("bad header")}),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "duplicate key",
			err:         &domain.DuplicateKeyError{Field: "record_no"},
			wantStatus:  http.StatusConflict,
			wantMessage: `duplicate value for field "record_no"`,
		},
		{
			name:        "unknown error",
			err:         errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := statusForError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, message)
			}
		})
	}
}
