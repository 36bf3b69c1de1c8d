package service

import "strings"

// Service identifies which kind of productivity record a request targets
type Service string

const (
	ServiceCalendar Service = "calendar"
	ServiceMeeting  Service = "meeting"
	ServiceMail     Service = "mail"
	ServiceUnknown  Service = "unknown"
)

// Action identifies what should happen to a record
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionRemove  Action = "remove"
	ActionSend    Action = "send"
	ActionUnknown Action = "unknown"
)

// validActions lists the only combinations the pipeline will act on.
// Mail drafts are sent instead of removed; calendar events and meetings are never sent.
var validActions = map[Service][]Action{
	ServiceCalendar: {ActionCreate, ActionUpdate, ActionRemove},
	ServiceMeeting:  {ActionCreate, ActionUpdate, ActionRemove},
	ServiceMail:     {ActionCreate, ActionUpdate, ActionSend},
}

// Services returns the known services in a stable order
func Services() []Service {
	return []Service{ServiceCalendar, ServiceMeeting, ServiceMail}
}

// ActionsFor returns the valid actions for a service
func ActionsFor(s Service) []Action {
	return append([]Action(nil), validActions[s]...)
}

// IsValid reports whether the (service, action) pair is in the supported set
func IsValid(s Service, a Action) bool {
	for _, candidate := range validActions[s] {
		if candidate == a {
			return true
		}
	}
	return false
}

// NeedsTarget reports whether the action operates on an existing record
func (a Action) NeedsTarget() bool {
	return a == ActionUpdate || a == ActionRemove || a == ActionSend
}

// ParseService maps loose spellings (including the original gcal/gmeet/gmail names) to a Service
func ParseService(raw string) Service {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "calendar", "gcal", "event", "google calendar":
		return ServiceCalendar
	case "meeting", "meet", "gmeet", "google meet":
		return ServiceMeeting
	case "mail", "email", "gmail", "draft":
		return ServiceMail
	default:
		return ServiceUnknown
	}
}

// ParseAction maps loose spellings to an Action
func ParseAction(raw string) Action {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "create", "insert", "add", "new":
		return ActionCreate
	case "update", "edit", "change", "modify":
		return ActionUpdate
	case "remove", "delete", "cancel":
		return ActionRemove
	case "send":
		return ActionSend
	default:
		return ActionUnknown
	}
}

// Noun returns the user-facing name for records of this service
func (s Service) Noun() string {
	switch s {
	case ServiceCalendar:
		return "event"
	case ServiceMeeting:
		return "meeting"
	case ServiceMail:
		return "draft"
	default:
		return "record"
	}
}
