package orchestrator

import (
	"errors"
	"testing"
	"time"

	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestConfirmation(t *testing.T) {
	start := time.Date(2026, 10, 16, 17, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	event := &database.Record{
		Kind:      service.ServiceCalendar,
		Title:     "Meeting with Brooke",
		Body:      "Talk about the offer",
		StartTime: &start,
		EndTime:   &end,
		Link:      "https://calendar.google.com/event?eid=1",
	}
	got := confirmation(service.ActionCreate, event)
	assert.Equal(t, "Event created!\n"+
		"Title: Meeting with Brooke\n"+
		"Description: Talk about the offer\n"+
		"Start: Fri Oct 16 2026, 5:00 PM UTC\n"+
		"End: Fri Oct 16 2026, 5:30 PM UTC\n"+
		"Link: https://calendar.google.com/event?eid=1", got)

	draft := &database.Record{
		Kind:         service.ServiceMail,
		Title:        "Quarterly report",
		Body:         "Attached.",
		Participants: []string{"sam@example.com", "kim@example.com"},
	}
	got = confirmation(service.ActionUpdate, draft)
	assert.Equal(t, "Draft updated!\nSubject: Quarterly report\nTo: sam@example.com, kim@example.com\nBody: Attached.", got)
}

func TestStorageErrorMessages(t *testing.T) {
	err := errors.New("disk full")

	assert.Equal(t, "The event was created remotely but failed to save locally: disk full",
		msgStorageError(service.ServiceCalendar, service.ActionCreate, err))
	assert.Equal(t, "The draft was sent remotely but failed to remove locally: disk full",
		msgStorageError(service.ServiceMail, service.ActionSend, err))
}
