package material

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from MaterialStatus
		to   MaterialStatus
		ok   bool
	}{
		{"uploaded to transcoding", StatusUploaded, StatusTranscoding, true},
		{"transcoding to done", StatusTranscoding, StatusDone, true},
		{"transcoding to failed", StatusTranscoding, StatusFailed, true},
		{"failed retries transcoding", StatusFailed, StatusTranscoding, true},
		{"uploaded skips to done", StatusUploaded, StatusDone, false},
		{"uploaded skips to failed", StatusUploaded, StatusFailed, false},
		{"done is terminal", StatusDone, StatusTranscoding, false},
		{"done back to uploaded", StatusDone, StatusUploaded, false},
		{"failed back to uploaded", StatusFailed, StatusUploaded, false},
		{"transcoding back to uploaded", StatusTranscoding, StatusUploaded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var invalid *InvalidTransitionError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.from, invalid.From)
			assert.Equal(t, tt.to, invalid.To)
		})
	}
}

func TestCanTransitionSelfIsNoop(t *testing.T) {
	for _, st := range []MaterialStatus{StatusUploaded, StatusTranscoding, StatusDone, StatusFailed} {
		assert.NoError(t, CanTransition(st, st), "self transition for %s", st)
	}
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := CanTransition(StatusDone, StatusTranscoding)
	var invalid *InvalidTransitionError
	assert.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Error(), "done")
	assert.Contains(t, invalid.Error(), "transcoding")
}
