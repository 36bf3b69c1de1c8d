package instruction

import (
	"fmt"
	"strings"
	"time"

	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/intent"
	"github.com/minhajsf/Plan-it/internal/payload"
	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/minhajsf/Plan-it/internal/timeutil"
)

// InsufficientInformation is the object the completion must return when it cannot fill the required fields
const InsufficientInformation = `{"error": "invalid"}`

// Synthesizer builds the schema-in-prompt instruction for a payload-producing action
type Synthesizer struct {
	Clock    timeutil.Clock
	Timezone string
}

// NewSynthesizer creates a synthesizer. An empty timezone uses the host zone.
func NewSynthesizer(clock timeutil.Clock, timezone string) *Synthesizer {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	if timezone == "" {
		timezone = timeutil.LocalZoneName()
	}
	return &Synthesizer{Clock: clock, Timezone: timezone}
}

// Build renders the instruction in the synthesizer's default timezone
func (s *Synthesizer) Build(in intent.Intent, snapshot *database.Record) string {
	return s.BuildFor(in, snapshot, s.Timezone)
}

// BuildFor renders the instruction for one user's timezone.
// A non-nil snapshot switches to the copy-forward update form.
func (s *Synthesizer) BuildFor(in intent.Intent, snapshot *database.Record, timezone string) string {
	if timezone == "" {
		timezone = s.Timezone
	}
	loc, fallback := timeutil.ResolveLocation(timezone)
	if fallback {
		timezone = loc.String()
	}
	now := s.Clock().In(loc)

	var b strings.Builder
	switch in.Service {
	case service.ServiceMail:
		writeMailInstruction(&b, snapshot != nil)
	default:
		writeEventInstruction(&b, in.Service, now, timezone, snapshot != nil)
	}

	if snapshot != nil {
		b.WriteString("\n## Current values\n")
		b.WriteString("This is the item as it exists now:\n")
		b.WriteString(snapshotJSON(snapshot))
		b.WriteString("\n\nApply only the changes the user asks for. Copy every field the user does not mention ")
		b.WriteString("forward exactly as it is above; never blank or drop an existing field. ")
		b.WriteString("Return the complete object, not just the changed fields.\n")
	}

	b.WriteString("\n## Missing information\n")
	b.WriteString("If the request does not contain enough information to fill the required fields, respond with exactly ")
	b.WriteString(InsufficientInformation)
	b.WriteString(" and nothing else.\n")

	b.WriteString("\n## Response format\n")
	b.WriteString("Respond with a single JSON object and nothing else. Use lowercase true and false.")
	return b.String()
}

func writeEventInstruction(b *strings.Builder, kind service.Service, now time.Time, timezone string, updating bool) {
	noun := kind.Noun()
	verb := "create"
	if updating {
		verb = "update"
	}

	fmt.Fprintf(b, "You turn a request into the JSON body used to %s a Google Calendar %s.\n\n", verb, noun)
	fmt.Fprintf(b, "The current date and time is %s (%s). The user's timezone is %s.\n",
		now.Format("Monday, January 2, 2006 3:04 PM"), now.Format(time.RFC3339), timezone)
	b.WriteString("Resolve relative phrases such as \"tomorrow\" or \"in an hour\" against that time.\n\n")

	b.WriteString("## Shape\n")
	b.WriteString("{\n")
	b.WriteString(`  "summary": "short title",` + "\n")
	b.WriteString(`  "description": "details",` + "\n")
	fmt.Fprintf(b, `  "start": {"dateTime": "YYYY-MM-DDTHH:MM:SS", "timeZone": "%s"},`+"\n", timezone)
	fmt.Fprintf(b, `  "end": {"dateTime": "YYYY-MM-DDTHH:MM:SS", "timeZone": "%s"},`+"\n", timezone)
	if kind == service.ServiceMeeting {
		b.WriteString(`  "reminders": {"useDefault": true},` + "\n")
		b.WriteString(`  "attendees": [{"email": "person@example.com"}]` + "\n")
	} else {
		b.WriteString(`  "reminders": {"useDefault": true}` + "\n")
	}
	b.WriteString("}\n\n")

	b.WriteString("## Rules\n")
	b.WriteString("- summary and start.dateTime are required.\n")
	b.WriteString("- Write dateTime values without an offset; the timeZone field carries the zone.\n")
	fmt.Fprintf(b, "- If no end time is given, set end to %d minutes after start.\n", int(payload.DefaultDuration.Minutes()))
	b.WriteString("- If no description is given, use the summary as the description.\n")
	b.WriteString("- Keep reminders as {\"useDefault\": true} unless the user asks for something else.\n")
	if kind == service.ServiceMeeting {
		b.WriteString("- List attendees only when the user gives their email addresses; otherwise use an empty list.\n")
	}
}

func writeMailInstruction(b *strings.Builder, updating bool) {
	verb := "create"
	if updating {
		verb = "update"
	}

	fmt.Fprintf(b, "You turn a request into the JSON body used to %s a Gmail draft.\n\n", verb)

	b.WriteString("## Shape\n")
	b.WriteString("{\n")
	b.WriteString(`  "from": "me",` + "\n")
	b.WriteString(`  "to": ["recipient@example.com"],` + "\n")
	b.WriteString(`  "cc": [],` + "\n")
	b.WriteString(`  "subject": "subject line",` + "\n")
	b.WriteString(`  "body": "plain text body"` + "\n")
	b.WriteString("}\n\n")

	b.WriteString("## Rules\n")
	b.WriteString("- subject and body are required. Write the body the user asked for in full, in plain text.\n")
	b.WriteString("- Only put real email addresses in to and cc. Leave them empty when the user gives none.\n")
	b.WriteString("- from is always \"me\".\n")
}

// snapshotJSON prefers the stored provider payload and falls back to the mirrored columns
func snapshotJSON(r *database.Record) string {
	if strings.TrimSpace(r.RawPayload) != "" && r.RawPayload != "{}" {
		return r.RawPayload
	}

	p := payload.Payload{}
	if r.Kind == service.ServiceMail {
		p["subject"] = r.Title
		p["body"] = r.Body
		p["to"] = r.Participants
		return p.JSON()
	}

	p["summary"] = r.Title
	p["description"] = r.Body
	if r.StartTime != nil {
		p["start"] = map[string]any{"dateTime": r.StartTime.Format(time.RFC3339)}
	}
	if r.EndTime != nil {
		p["end"] = map[string]any{"dateTime": r.EndTime.Format(time.RFC3339)}
	}
	if len(r.Participants) > 0 {
		p["attendees"] = r.Participants
	}
	return p.JSON()
}
