package worker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dialdesk/dialdesk-be/internal/worker/domain"
)

func TestShouldRequeue(t *testing.T) {
	w := &Worker{}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "invalid event is dropped",
			err:  domain.ErrInvalidEvent,
			want: false,
		},
		{
			name: "wrapped invalid event is dropped",
			err:  fmt.Errorf("event missing kind: %w", domain.ErrInvalidEvent),
			want: false,
		},
		{
			name: "retryable error is requeued",
			err:  domain.NewRetryableError(errors.New("query workloads: connection refused")),
			want: true,
		},
		{
			name: "plain error is dropped",
			err:  errors.New("unexpected"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.shouldRequeue(tt.err))
		})
	}
}
