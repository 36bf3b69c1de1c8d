package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		service Service
		action  Action
		want    bool
	}{
		{ServiceCalendar, ActionCreate, true},
		{ServiceCalendar, ActionUpdate, true},
		{ServiceCalendar, ActionRemove, true},
		{ServiceCalendar, ActionSend, false},
		{ServiceMeeting, ActionCreate, true},
		{ServiceMeeting, ActionRemove, true},
		{ServiceMeeting, ActionSend, false},
		{ServiceMail, ActionCreate, true},
		{ServiceMail, ActionUpdate, true},
		{ServiceMail, ActionSend, true},
		{ServiceMail, ActionRemove, false},
		{ServiceUnknown, ActionCreate, false},
		{ServiceCalendar, ActionUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.service)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.service, tt.action))
		})
	}
}

func TestParseService(t *testing.T) {
	assert.Equal(t, ServiceCalendar, ParseService("gcal"))
	assert.Equal(t, ServiceCalendar, ParseService(" Calendar "))
	assert.Equal(t, ServiceMeeting, ParseService("gmeet"))
	assert.Equal(t, ServiceMail, ParseService("Gmail"))
	assert.Equal(t, ServiceUnknown, ParseService("slack"))
}

func TestParseAction(t *testing.T) {
	assert.Equal(t, ActionCreate, ParseAction("Create"))
	assert.Equal(t, ActionRemove, ParseAction("delete"))
	assert.Equal(t, ActionUpdate, ParseAction("UPDATE"))
	assert.Equal(t, ActionSend, ParseAction("send"))
	assert.Equal(t, ActionUnknown, ParseAction(""))
}

func TestActionsForReturnsCopy(t *testing.T) {
	actions := ActionsFor(ServiceMail)
	actions[0] = ActionRemove
	assert.Equal(t, ActionCreate, ActionsFor(ServiceMail)[0])
}

func TestNeedsTarget(t *testing.T) {
	assert.False(t, ActionCreate.NeedsTarget())
	assert.True(t, ActionUpdate.NeedsTarget())
	assert.True(t, ActionRemove.NeedsTarget())
	assert.True(t, ActionSend.NeedsTarget())
}
