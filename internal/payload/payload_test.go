package payload

import (
	"testing"
	"time"

	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEscapeHatch(t *testing.T) {
	p, err := Normalize(`{"error": "invalid"}`)
	require.NoError(t, err)
	assert.ErrorIs(t, p.Check(), ErrInsufficientInformation)
	assert.ErrorIs(t, p.Validate(service.ServiceCalendar), ErrInsufficientInformation)

	ok := Payload{"summary": "x"}
	assert.NoError(t, ok.Check())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    service.Service
		payload Payload
		wantErr bool
	}{
		{
			name: "calendar complete",
			kind: service.ServiceCalendar,
			payload: Payload{
				"summary": "Lunch",
				"start":   map[string]any{"dateTime": "2026-10-16T12:00:00Z"},
			},
		},
		{
			name:    "calendar missing start",
			kind:    service.ServiceCalendar,
			payload: Payload{"summary": "Lunch"},
			wantErr: true,
		},
		{
			name:    "meeting missing summary",
			kind:    service.ServiceMeeting,
			payload: Payload{"start": map[string]any{"dateTime": "2026-10-16T12:00:00Z"}},
			wantErr: true,
		},
		{
			name:    "mail complete with empty body",
			kind:    service.ServiceMail,
			payload: Payload{"subject": "Hi", "body": ""},
		},
		{
			name:    "mail missing subject",
			kind:    service.ServiceMail,
			payload: Payload{"body": "text"},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			kind:    service.ServiceUnknown,
			payload: Payload{"summary": "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate(tt.kind)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFillDefaults(t *testing.T) {
	t.Run("end defaults to start plus thirty minutes", func(t *testing.T) {
		p := Payload{
			"summary": "Meeting with Brooke",
			"start":   map[string]any{"dateTime": "2026-10-16T17:00:00", "timeZone": "America/New_York"},
		}
		p.FillDefaults(service.ServiceCalendar, "UTC")

		assert.Equal(t, "Meeting with Brooke", p.String("description"))
		assert.Equal(t, map[string]any{"useDefault": true}, p["reminders"])
		assert.Equal(t, "America/New_York", p.Nested("end", "timeZone"))

		start, end, err := p.Times("UTC")
		require.NoError(t, err)
		require.NotNil(t, start)
		require.NotNil(t, end)
		assert.Equal(t, 30*time.Minute, end.Sub(*start))
		assert.Equal(t, 17, start.Hour())
	})

	t.Run("existing end and description are kept", func(t *testing.T) {
		p := Payload{
			"summary":     "Review",
			"description": "Quarterly",
			"start":       map[string]any{"dateTime": "2026-10-16T09:00:00Z"},
			"end":         map[string]any{"dateTime": "2026-10-16T11:00:00Z"},
			"reminders":   map[string]any{"useDefault": false},
		}
		p.FillDefaults(service.ServiceMeeting, "UTC")

		assert.Equal(t, "Quarterly", p.String("description"))
		assert.Equal(t, "2026-10-16T11:00:00Z", p.Nested("end", "dateTime"))
		assert.Equal(t, map[string]any{"useDefault": false}, p["reminders"])
	})

	t.Run("mail is untouched", func(t *testing.T) {
		p := Payload{"subject": "Hi"}
		p.FillDefaults(service.ServiceMail, "UTC")
		assert.Equal(t, Payload{"subject": "Hi"}, p)
	})
}

func TestParticipants(t *testing.T) {
	meeting := Payload{"attendees": []any{
		map[string]any{"email": "brooke@example.com"},
		"john@example.com",
		map[string]any{"displayName": "no email"},
	}}
	assert.Equal(t, []string{"brooke@example.com", "john@example.com"}, meeting.Participants(service.ServiceMeeting))

	mail := Payload{"to": "a@example.com, b@example.com", "cc": []any{"c@example.com"}}
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, mail.Participants(service.ServiceMail))

	assert.Empty(t, Payload{}.Participants(service.ServiceCalendar))
}

func TestTitleAndBody(t *testing.T) {
	event := Payload{"summary": " Lunch ", "description": "with Sam"}
	assert.Equal(t, "Lunch", event.Title(service.ServiceCalendar))
	assert.Equal(t, "with Sam", event.Body(service.ServiceCalendar))

	mail := Payload{"subject": "Hello", "body": "Hi Sam"}
	assert.Equal(t, "Hello", mail.Title(service.ServiceMail))
	assert.Equal(t, "Hi Sam", mail.Body(service.ServiceMail))
}

func TestDecode(t *testing.T) {
	p, err := Decode(`{"summary":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, "x", p.String("summary"))

	_, err = Decode("not json")
	assert.Error(t, err)
}

func TestUnderlay(t *testing.T) {
	stored := func() Payload {
		return Payload{
			"summary":     "Meeting with Brooke",
			"description": "Weekly sync",
			"start":       map[string]any{"dateTime": "2026-10-16T17:00:00-04:00"},
			"end":         map[string]any{"dateTime": "2026-10-16T17:30:00-04:00"},
		}
	}

	t.Run("missing keys come from the stored payload", func(t *testing.T) {
		p := Payload{"summary": "Interview with Brooke"}
		p.Underlay(stored())

		assert.Equal(t, "Interview with Brooke", p.String("summary"))
		assert.Equal(t, "Weekly sync", p.String("description"))
		assert.Equal(t, "2026-10-16T17:00:00-04:00", p.Nested("start", "dateTime"))
		assert.Equal(t, "2026-10-16T17:30:00-04:00", p.Nested("end", "dateTime"))
	})

	t.Run("moved start drops the stored end", func(t *testing.T) {
		p := Payload{"start": map[string]any{"dateTime": "2026-10-17T09:00:00-04:00"}}
		p.Underlay(stored())

		assert.Equal(t, "Meeting with Brooke", p.String("summary"))
		assert.Equal(t, "", p.Nested("end", "dateTime"))
	})

	t.Run("explicit end is kept", func(t *testing.T) {
		p := Payload{
			"start": map[string]any{"dateTime": "2026-10-17T09:00:00-04:00"},
			"end":   map[string]any{"dateTime": "2026-10-17T10:00:00-04:00"},
		}
		p.Underlay(stored())
		assert.Equal(t, "2026-10-17T10:00:00-04:00", p.Nested("end", "dateTime"))
	})

	t.Run("mail fields", func(t *testing.T) {
		p := Payload{"body": "Updated numbers"}
		p.Underlay(Payload{"subject": "Quarterly report", "to": []any{"sam@example.com"}, "body": "Numbers"})

		assert.Equal(t, "Quarterly report", p.String("subject"))
		assert.Equal(t, "Updated numbers", p.String("body"))
		assert.Equal(t, []string{"sam@example.com"}, p.Addresses("to"))
	})
}
