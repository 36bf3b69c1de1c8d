package intent

import (
	"fmt"
	"strings"

	"github.com/minhajsf/Plan-it/internal/service"
)

// SystemPrompt returns the classification instruction. The valid pairs are
// generated from the service table so the prompt and the dispatch cannot drift.
func SystemPrompt() string {
	var pairs strings.Builder
	for _, s := range service.Services() {
		actions := service.ActionsFor(s)
		names := make([]string, len(actions))
		for i, a := range actions {
			names[i] = string(a)
		}
		pairs.WriteString(fmt.Sprintf("- event_type \"%s\": mode one of %s\n", s, strings.Join(names, ", ")))
	}

	return `You route requests for a personal assistant that manages Google Calendar events,
Google Meet meetings and Gmail drafts.

Decide which service the user's message is about and what they want to do with it.

## Valid combinations
` + pairs.String() + `
## Guidance
- "calendar" is for plain calendar events (appointments, reminders, blocks of time).
- "meeting" is for video meetings that need a Google Meet link or invite other people online.
- "mail" is for email drafts. Writing or composing an email is "create"; sending one is "send".
- Deleting or cancelling an event or meeting is "remove".
- If the message does not clearly ask for one of the combinations above, use "unknown" for both keys.

## Response format
Respond with exactly one JSON object with exactly these keys and nothing else:
{"event_type": "calendar|meeting|mail|unknown", "mode": "create|update|remove|send|unknown"}`
}
