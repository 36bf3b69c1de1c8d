package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocation(t *testing.T) {
	loc, fallback := ResolveLocation("America/Chicago")
	assert.False(t, fallback)
	assert.Equal(t, "America/Chicago", loc.String())

	loc, fallback = ResolveLocation("")
	assert.True(t, fallback)
	assert.Equal(t, time.UTC, loc)

	loc, fallback = ResolveLocation("Mars/Olympus")
	assert.True(t, fallback)
	assert.Equal(t, time.UTC, loc)
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		timezone     string
		wantHour     int
		wantLocation string
		wantFallback bool
		wantErr      bool
	}{
		{
			name:     "rfc3339 keeps offset",
			value:    "2026-10-16T17:00:00-07:00",
			timezone: "America/New_York",
			wantHour: 17,
		},
		{
			name:         "local layout uses timezone",
			value:        "2026-10-16T17:00:00",
			timezone:     "America/New_York",
			wantHour:     17,
			wantLocation: "America/New_York",
		},
		{
			name:         "space layout without seconds",
			value:        "2026-10-16 09:30",
			timezone:     "Europe/London",
			wantHour:     9,
			wantLocation: "Europe/London",
		},
		{
			name:         "unknown timezone falls back to utc",
			value:        "2026-10-16T08:00",
			timezone:     "Nowhere/Special",
			wantHour:     8,
			wantLocation: "UTC",
			wantFallback: true,
		},
		{
			name:    "empty",
			value:   "",
			wantErr: true,
		},
		{
			name:     "garbage",
			value:    "tomorrow at five",
			timezone: "UTC",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fallback, err := ParseDateTime(tt.value, tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, got.Hour())
			assert.Equal(t, tt.wantFallback, fallback)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, got.Location().String())
			}
		})
	}
}
