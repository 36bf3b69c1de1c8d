package orchestrator

import (
	"fmt"
	"strings"

	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/minhajsf/Plan-it/internal/timeutil"
)

const (
	msgUnknownIntent = "Sorry, I couldn't tell what you want to do. Please say whether it is a calendar event, " +
		"a meeting or an email, and whether to create, update, remove or send it."
	msgCompletionFailed     = "Sorry, I couldn't work out the details right now. Please try again."
	msgMalformedPayload     = "Sorry, I couldn't understand the details I came up with. Please try rephrasing your request."
	msgUnsupportedResponse  = "You have entered an unsupported response. Please try again."
	msgRemovalCancelledTmpl = "Ok. Please try again with the exact %s title that you want removed."
)

var pastTense = map[service.Action]string{
	service.ActionCreate: "created",
	service.ActionUpdate: "updated",
	service.ActionRemove: "deleted",
	service.ActionSend:   "sent",
}

func msgNotFound(kind service.Service) string {
	noun := kind.Noun()
	return fmt.Sprintf("No matching %s found. Please try again with the exact %s title.", noun, noun)
}

func msgLookupFailed(kind service.Service) string {
	return fmt.Sprintf("Sorry, I couldn't look up your %ss right now. Please try again.", kind.Noun())
}

func msgInsufficientInfo(kind service.Service) string {
	if kind == service.ServiceMail {
		return "I need more details for that email. Please include at least a subject and what it should say."
	}
	return fmt.Sprintf("I need more details for that %s. Please include at least a title and a start time.", kind.Noun())
}

func msgProviderError(kind service.Service, action service.Action, err error) string {
	return fmt.Sprintf("Couldn't %s the %s: %v", action, kind.Noun(), err)
}

func msgProviderUnavailable(err error) string {
	return fmt.Sprintf("Couldn't reach your Google account: %v", err)
}

// msgStorageError is the one reply where remote and local state disagree
func msgStorageError(kind service.Service, action service.Action, err error) string {
	verb := pastTense[action]
	if action == service.ActionCreate || action == service.ActionUpdate {
		return fmt.Sprintf("The %s was %s remotely but failed to save locally: %v", kind.Noun(), verb, err)
	}
	return fmt.Sprintf("The %s was %s remotely but failed to remove locally: %v", kind.Noun(), verb, err)
}

func msgRemovalCancelled(kind service.Service) string {
	return fmt.Sprintf(msgRemovalCancelledTmpl, kind.Noun())
}

func confirmRemovalPrompt(r *database.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s to be deleted:\n", capitalize(r.Kind.Noun()))
	writeDetails(&b, r)
	fmt.Fprintf(&b, "Are you sure you want this %s deleted? (y/n)", r.Kind.Noun())
	return b.String()
}

// confirmation renders the record block shown after a successful action
func confirmation(action service.Action, r *database.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s!\n", capitalize(r.Kind.Noun()), pastTense[action])
	writeDetails(&b, r)
	return strings.TrimRight(b.String(), "\n")
}

func writeDetails(b *strings.Builder, r *database.Record) {
	if r.Kind == service.ServiceMail {
		fmt.Fprintf(b, "Subject: %s\n", r.Title)
		if len(r.Participants) > 0 {
			fmt.Fprintf(b, "To: %s\n", strings.Join(r.Participants, ", "))
		}
		if r.Body != "" {
			fmt.Fprintf(b, "Body: %s\n", r.Body)
		}
		return
	}

	fmt.Fprintf(b, "Title: %s\n", r.Title)
	if r.Body != "" {
		fmt.Fprintf(b, "Description: %s\n", r.Body)
	}
	if r.StartTime != nil {
		fmt.Fprintf(b, "Start: %s\n", timeutil.FormatHuman(*r.StartTime))
	}
	if r.EndTime != nil {
		fmt.Fprintf(b, "End: %s\n", timeutil.FormatHuman(*r.EndTime))
	}
	if len(r.Participants) > 0 {
		fmt.Fprintf(b, "Attendees: %s\n", strings.Join(r.Participants, ", "))
	}
	if r.Link != "" {
		label := "Link"
		if r.Kind == service.ServiceMeeting {
			label = "Meet link"
		}
		fmt.Fprintf(b, "%s: %s\n", label, r.Link)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
