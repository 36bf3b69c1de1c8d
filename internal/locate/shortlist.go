package locate

import (
	"strings"

	"github.com/minhajsf/Plan-it/internal/database"
)

// Candidate is one entry of the shortlist handed to the matcher
type Candidate struct {
	ID       string
	Snapshot string
}

// Shortlist keeps the records whose title or body contains any keyword,
// case-insensitively. Order is preserved. No keywords means no candidates.
func Shortlist(records []database.Record, keywords []string) []database.Record {
	var terms []string
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			terms = append(terms, kw)
		}
	}
	if len(terms) == 0 {
		return nil
	}

	var out []database.Record
	for _, r := range records {
		title := strings.ToLower(r.Title)
		body := strings.ToLower(r.Body)
		for _, term := range terms {
			if strings.Contains(title, term) || strings.Contains(body, term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Candidates converts records to (provider id, snapshot) pairs
func Candidates(records []database.Record) []Candidate {
	out := make([]Candidate, 0, len(records))
	for _, r := range records {
		out = append(out, Candidate{ID: r.ProviderID, Snapshot: r.RawPayload})
	}
	return out
}
