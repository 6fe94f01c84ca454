package handler

import (
	"testing"
	"time"

	"github.com/abdusco/shortlink/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2030-05-06T07:08:09Z", time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)},
		{"2030-05-06T09:08:09+02:00", time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)},
		{"2030-05-06T07:08:09", time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)},
		{"2030-05-06T07:08", time.Date(2030, 5, 6, 7, 8, 0, 0, time.UTC)},
		{"2030-05-06", time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseExpiry(tt.raw)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestParseExpiry_Empty(t *testing.T) {
	got, err := parseExpiry("  ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseExpiry_Invalid(t *testing.T) {
	_, err := parseExpiry("next tuesday")
	assert.ErrorIs(t, err, internal.ErrValidation)
}
