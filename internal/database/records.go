package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minhajsf/Plan-it/internal/service"
)

// ErrRecordNotFound is returned when a lookup matches no row for the user
var ErrRecordNotFound = errors.New("record not found")

// Record is the local mirror of a calendar event, meeting or mail draft.
// ProviderID is the join key for every provider call after creation.
type Record struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	Kind         service.Service `json:"kind"`
	ProviderID   string          `json:"provider_id"`
	Title        string          `json:"title"`
	Body         string          `json:"body,omitempty"`
	StartTime    *time.Time      `json:"start_time,omitempty"`
	EndTime      *time.Time      `json:"end_time,omitempty"`
	Participants []string        `json:"participants,omitempty"`
	RawPayload   string          `json:"raw_payload"`
	Link         string          `json:"link,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

const recordColumns = `id, user_id, kind, provider_id, title, body, start_time, end_time,
	participants, raw_payload, link, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var kind, participants string
	var start, end sql.NullTime

	err := row.Scan(
		&r.ID, &r.UserID, &kind, &r.ProviderID, &r.Title, &r.Body, &start, &end,
		&participants, &r.RawPayload, &r.Link, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Kind = service.Service(kind)
	if start.Valid {
		r.StartTime = &start.Time
	}
	if end.Valid {
		r.EndTime = &end.Time
	}
	if participants != "" {
		if err := json.Unmarshal([]byte(participants), &r.Participants); err != nil {
			return nil, fmt.Errorf("failed to decode participants: %w", err)
		}
	}
	return &r, nil
}

func encodeParticipants(p []string) (string, error) {
	if len(p) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode participants: %w", err)
	}
	return string(b), nil
}

// CreateRecord inserts a record that the provider has already accepted
func (d *DB) CreateRecord(r *Record) (*Record, error) {
	if r.ProviderID == "" {
		return nil, fmt.Errorf("failed to create record: provider id is required")
	}

	participants, err := encodeParticipants(r.Participants)
	if err != nil {
		return nil, err
	}
	if r.RawPayload == "" {
		r.RawPayload = "{}"
	}

	result, err := d.Exec(`
		INSERT INTO records (
			user_id, kind, provider_id, title, body, start_time, end_time,
			participants, raw_payload, link
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.UserID, string(r.Kind), r.ProviderID, r.Title, r.Body, r.StartTime, r.EndTime,
		participants, r.RawPayload, r.Link,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get record id: %w", err)
	}

	r.ID = id
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	return r, nil
}

// GetRecord retrieves a record by local id, scoped to its owner
func (d *DB) GetRecord(userID, id int64) (*Record, error) {
	row := d.QueryRow(`SELECT `+recordColumns+` FROM records WHERE user_id = ? AND id = ?`, userID, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return r, nil
}

// GetRecordByProviderID retrieves a record by the provider-issued id
func (d *DB) GetRecordByProviderID(userID int64, kind service.Service, providerID string) (*Record, error) {
	row := d.QueryRow(`
		SELECT `+recordColumns+`
		FROM records
		WHERE user_id = ? AND kind = ? AND provider_id = ?
	`, userID, string(kind), providerID)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record by provider id: %w", err)
	}
	return r, nil
}

// ListRecords returns a user's records, newest first. An empty kind lists every kind.
func (d *DB) ListRecords(userID int64, kind service.Service) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE user_id = ?`
	args := []any{userID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return d.queryRecords(query, args...)
}

// SearchRecords returns records of one kind whose title or body contains any
// of the keywords, case-insensitively. No keywords means no candidates.
// Both sides are folded with strings.ToLower so non-ASCII text matches too.
func (d *DB) SearchRecords(userID int64, kind service.Service, keywords []string) ([]Record, error) {
	var clauses []string
	args := []any{userID, string(kind)}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		clauses = append(clauses, `instr(fold_lower(title), ?) > 0 OR instr(fold_lower(body), ?) > 0`)
		args = append(args, kw, kw)
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	query := `SELECT ` + recordColumns + `
		FROM records
		WHERE user_id = ? AND kind = ? AND (` + strings.Join(clauses, " OR ") + `)
		ORDER BY updated_at DESC, id DESC`

	return d.queryRecords(query, args...)
}

func (d *DB) queryRecords(query string, args ...any) ([]Record, error) {
	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// UpdateRecord overwrites the mutable fields of a record, including a reissued provider id
func (d *DB) UpdateRecord(r *Record) error {
	if r.ProviderID == "" {
		return fmt.Errorf("failed to update record: provider id is required")
	}

	participants, err := encodeParticipants(r.Participants)
	if err != nil {
		return err
	}

	result, err := d.Exec(`
		UPDATE records SET
			provider_id = ?, title = ?, body = ?, start_time = ?, end_time = ?,
			participants = ?, raw_payload = ?, link = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND id = ?
	`,
		r.ProviderID, r.Title, r.Body, r.StartTime, r.EndTime,
		participants, r.RawPayload, r.Link,
		r.UserID, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	r.UpdatedAt = time.Now()
	return nil
}

// DeleteRecord removes a record from the local mirror
func (d *DB) DeleteRecord(userID, id int64) error {
	result, err := d.Exec(`DELETE FROM records WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ClearRecords removes every record a user owns and reports how many were removed
func (d *DB) ClearRecords(userID int64) (int64, error) {
	result, err := d.Exec(`DELETE FROM records WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear records: %w", err)
	}
	return result.RowsAffected()
}
