package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		row  CanonicalRow
		kind SchemaKind
		want bool
	}{
		{
			name: "generic complete",
			row:  CanonicalRow{Name: "Alice", Phone: "+911234567890"},
			kind: SchemaGenericList,
			want: true,
		},
		{
			name: "generic notes optional",
			row:  CanonicalRow{Name: "Alice", Phone: "+911234567890", Notes: ""},
			kind: SchemaGenericList,
			want: true,
		},
		{
			name: "generic missing phone",
			row:  CanonicalRow{Name: "Alice"},
			kind: SchemaGenericList,
			want: false,
		},
		{
			name: "generic whitespace name",
			row:  CanonicalRow{Name: "   ", Phone: "+911234567890"},
			kind: SchemaGenericList,
			want: false,
		},
		{
			name: "call queue complete",
			row:  CanonicalRow{RecordNo: ptrFloat(1), Name: "Bob", Phone: "+911234567891", Email: "bob@example.com"},
			kind: SchemaCallQueue,
			want: true,
		},
		{
			name: "call queue missing record no",
			row:  CanonicalRow{Name: "Bob", Phone: "+911234567891", Email: "bob@example.com"},
			kind: SchemaCallQueue,
			want: false,
		},
		{
			name: "call queue missing email",
			row:  CanonicalRow{RecordNo: ptrFloat(1), Name: "Bob", Phone: "+911234567891"},
			kind: SchemaCallQueue,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.row, tt.kind))
		})
	}
}

func TestValidateAll(t *testing.T) {
	rows := []CanonicalRow{
		{Name: "  Alice  ", Phone: " +911234567890 ", Notes: " vip "},
		{Name: "", Phone: "+911234567891"},
		{Name: "Carol", Phone: "+911234567892"},
	}

	valid, dropped, err := ValidateAll(rows, SchemaGenericList)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, valid, 2)

	// Surviving values come back trimmed
	assert.Equal(t, "Alice", valid[0].Name)
	assert.Equal(t, "+911234567890", valid[0].Phone)
	assert.Equal(t, "vip", valid[0].Notes)
	assert.Equal(t, "Carol", valid[1].Name)
}

func TestValidateAll_NoValidRows(t *testing.T) {
	rows := []CanonicalRow{
		{Name: "Alice"},
		{Phone: "+911234567890"},
	}

	valid, dropped, err := ValidateAll(rows, SchemaGenericList)
	require.ErrorIs(t, err, ErrNoValidRows)
	assert.Equal(t, 2, dropped)
	assert.Nil(t, valid)
}

func TestValidateAll_EmptyInput(t *testing.T) {
	_, dropped, err := ValidateAll(nil, SchemaCallQueue)
	require.ErrorIs(t, err, ErrNoValidRows)
	assert.Zero(t, dropped)
}
