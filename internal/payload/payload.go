package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/minhajsf/Plan-it/internal/timeutil"
)

var (
	// ErrInsufficientInformation means the completion used the {"error": "invalid"} escape hatch
	ErrInsufficientInformation = errors.New("not enough information to build the request")
	// ErrMissingField means a required key is absent from the payload
	ErrMissingField = errors.New("payload is missing a required field")
)

// DefaultDuration is applied when a calendar payload has no end time
const DefaultDuration = 30 * time.Minute

// Payload is the provider-shaped JSON object produced from a completion.
// Calendar and meeting payloads use summary/description/start/end/reminders
// (plus attendees); mail payloads use from/to/cc/subject/body.
type Payload map[string]any

// Check reports the escape hatch as an error
func (p Payload) Check() error {
	if v, ok := p["error"]; ok && v != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientInformation, v)
	}
	return nil
}

// Validate checks that the keys the provider needs are present
func (p Payload) Validate(kind service.Service) error {
	if err := p.Check(); err != nil {
		return err
	}

	switch kind {
	case service.ServiceCalendar, service.ServiceMeeting:
		if p.String("summary") == "" {
			return fmt.Errorf("%w: summary", ErrMissingField)
		}
		if p.Nested("start", "dateTime") == "" {
			return fmt.Errorf("%w: start.dateTime", ErrMissingField)
		}
	case service.ServiceMail:
		if p.String("subject") == "" {
			return fmt.Errorf("%w: subject", ErrMissingField)
		}
		if _, ok := p["body"]; !ok {
			return fmt.Errorf("%w: body", ErrMissingField)
		}
	default:
		return fmt.Errorf("unsupported service: %s", kind)
	}
	return nil
}

// FillDefaults applies the same defaults the instruction asks for, in case the completion skipped them:
// end = start + 30 minutes, description = summary, reminders use the calendar default.
func (p Payload) FillDefaults(kind service.Service, timezone string) {
	if kind != service.ServiceCalendar && kind != service.ServiceMeeting {
		return
	}

	if p.String("description") == "" && p.String("summary") != "" {
		p["description"] = p.String("summary")
	}

	if _, ok := p["reminders"]; !ok {
		p["reminders"] = map[string]any{"useDefault": true}
	}

	startRaw := p.Nested("start", "dateTime")
	if startRaw == "" {
		return
	}
	if tz := p.Nested("start", "timeZone"); tz != "" {
		timezone = tz
	}
	if p.Nested("start", "timeZone") == "" && timezone != "" {
		p.setNested("start", "timeZone", timezone)
	}
	if p.Nested("end", "dateTime") != "" {
		if p.Nested("end", "timeZone") == "" && timezone != "" {
			p.setNested("end", "timeZone", timezone)
		}
		return
	}

	start, _, err := timeutil.ParseDateTime(startRaw, timezone)
	if err != nil {
		return
	}
	p.setNested("end", "dateTime", start.Add(DefaultDuration).Format(time.RFC3339))
	if timezone != "" {
		p.setNested("end", "timeZone", timezone)
	}
}

// Underlay fills the keys p does not set with the values from base, so an
// update that only names the changed fields keeps the stored ones. When p
// moves the start but gives no end, the stored end is dropped and FillDefaults
// recomputes it.
func (p Payload) Underlay(base Payload) {
	_, moved := p["start"]
	for k, v := range base {
		if _, ok := p[k]; ok {
			continue
		}
		if k == "end" && moved {
			continue
		}
		p[k] = v
	}
}

// String returns a top-level string field
func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Nested returns a string field one level down, e.g. start.dateTime
func (p Payload) Nested(key, field string) string {
	obj, ok := p[key].(map[string]any)
	if !ok {
		return ""
	}
	if v, ok := obj[field].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func (p Payload) setNested(key, field string, value any) {
	obj, ok := p[key].(map[string]any)
	if !ok {
		obj = map[string]any{}
		p[key] = obj
	}
	obj[field] = value
}

// Title returns the human title for the record kind
func (p Payload) Title(kind service.Service) string {
	if kind == service.ServiceMail {
		return p.String("subject")
	}
	return p.String("summary")
}

// Body returns the free text body for the record kind
func (p Payload) Body(kind service.Service) string {
	if kind == service.ServiceMail {
		return p.String("body")
	}
	return p.String("description")
}

// Addresses returns a list field that may be a single string, a list of
// strings, or a list of {"email": ...} objects.
func (p Payload) Addresses(key string) []string {
	var out []string
	switch v := p[key].(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			switch e := item.(type) {
			case string:
				if s := strings.TrimSpace(e); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				if s, ok := e["email"].(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
		}
	}
	return out
}

// Participants returns everyone involved in the record
func (p Payload) Participants(kind service.Service) []string {
	if kind == service.ServiceMail {
		return append(p.Addresses("to"), p.Addresses("cc")...)
	}
	return p.Addresses("attendees")
}

// Times parses start and end in the given fallback timezone. Mail payloads return zero times.
func (p Payload) Times(timezone string) (start, end *time.Time, err error) {
	if raw := p.Nested("start", "dateTime"); raw != "" {
		tz := p.Nested("start", "timeZone")
		if tz == "" {
			tz = timezone
		}
		t, _, err := timeutil.ParseDateTime(raw, tz)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start time: %w", err)
		}
		start = &t
	}
	if raw := p.Nested("end", "dateTime"); raw != "" {
		tz := p.Nested("end", "timeZone")
		if tz == "" {
			tz = timezone
		}
		t, _, err := timeutil.ParseDateTime(raw, tz)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end time: %w", err)
		}
		end = &t
	}
	return start, end, nil
}

// JSON serializes the payload
func (p Payload) JSON() string {
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Decode parses a stored payload snapshot
func Decode(raw string) (Payload, error) {
	p, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return p, nil
}
