package database

import (
	"testing"
	"time"

	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(userID int64, kind service.Service, providerID, title, body string) *Record {
	start := time.Date(2026, 10, 16, 17, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	return &Record{
		UserID:       userID,
		Kind:         kind,
		ProviderID:   providerID,
		Title:        title,
		Body:         body,
		StartTime:    &start,
		EndTime:      &end,
		Participants: []string{"brooke@example.com"},
		RawPayload:   `{"summary":"` + title + `"}`,
	}
}

func TestRecordCRUD(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)

	created, err := db.CreateRecord(newTestRecord(user.ID, service.ServiceCalendar, "evt-1", "Meeting with Brooke", "Meeting with Brooke"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	t.Run("get by id", func(t *testing.T) {
		got, err := db.GetRecord(user.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Meeting with Brooke", got.Title)
		assert.Equal(t, service.ServiceCalendar, got.Kind)
		assert.Equal(t, []string{"brooke@example.com"}, got.Participants)
		require.NotNil(t, got.StartTime)
		require.NotNil(t, got.EndTime)
		assert.Equal(t, 30*time.Minute, got.EndTime.Sub(*got.StartTime))
	})

	t.Run("get by provider id", func(t *testing.T) {
		got, err := db.GetRecordByProviderID(user.ID, service.ServiceCalendar, "evt-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)

		_, err = db.GetRecordByProviderID(user.ID, service.ServiceMeeting, "evt-1")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("update replaces provider id", func(t *testing.T) {
		got, err := db.GetRecord(user.ID, created.ID)
		require.NoError(t, err)

		got.Title = "Interview with Brooke"
		got.ProviderID = "evt-2"
		require.NoError(t, db.UpdateRecord(got))

		again, err := db.GetRecord(user.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Interview with Brooke", again.Title)
		assert.Equal(t, "evt-2", again.ProviderID)

		_, err = db.GetRecordByProviderID(user.ID, service.ServiceCalendar, "evt-1")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, db.DeleteRecord(user.ID, created.ID))

		_, err := db.GetRecord(user.ID, created.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)

		assert.ErrorIs(t, db.DeleteRecord(user.ID, created.ID), ErrRecordNotFound)
	})
}

func TestCreateRecordRequiresProviderID(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)

	_, err := db.CreateRecord(newTestRecord(user.ID, service.ServiceMail, "", "Hello", "Hi"))
	assert.Error(t, err)
}

func TestRecordsAreScopedToOwner(t *testing.T) {
	db := NewTestDB(t)
	alice := CreateTestUser(t, db)
	bob := CreateTestUser(t, db)

	r, err := db.CreateRecord(newTestRecord(alice.ID, service.ServiceCalendar, "evt-a", "Dentist", ""))
	require.NoError(t, err)

	_, err = db.GetRecord(bob.ID, r.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	found, err := db.SearchRecords(bob.ID, service.ServiceCalendar, []string{"dentist"})
	require.NoError(t, err)
	assert.Empty(t, found)

	assert.ErrorIs(t, db.DeleteRecord(bob.ID, r.ID), ErrRecordNotFound)
}

func TestListRecords(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)

	_, err := db.CreateRecord(newTestRecord(user.ID, service.ServiceCalendar, "evt-1", "Dentist", ""))
	require.NoError(t, err)
	_, err = db.CreateRecord(newTestRecord(user.ID, service.ServiceMail, "draft-1", "Quarterly report", "Numbers attached"))
	require.NoError(t, err)

	all, err := db.ListRecords(user.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mail, err := db.ListRecords(user.ID, service.ServiceMail)
	require.NoError(t, err)
	require.Len(t, mail, 1)
	assert.Equal(t, "draft-1", mail[0].ProviderID)
}

func TestSearchRecords(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)

	for _, r := range []*Record{
		newTestRecord(user.ID, service.ServiceCalendar, "evt-1", "Meeting with Brooke", "Weekly sync"),
		newTestRecord(user.ID, service.ServiceCalendar, "evt-2", "Dentist", "Cleaning at 100% discount"),
		newTestRecord(user.ID, service.ServiceCalendar, "evt-3", "Gym", "Leg day"),
		newTestRecord(user.ID, service.ServiceMeeting, "meet-1", "Brooke interview", ""),
		newTestRecord(user.ID, service.ServiceCalendar, "evt-4", "Réunion avec Élodie", "Salle Ørsted"),
	} {
		_, err := db.CreateRecord(r)
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		keywords []string
		want     []string
	}{
		{name: "case insensitive title", keywords: []string{"BROOKE"}, want: []string{"evt-1"}},
		{name: "body match", keywords: []string{"leg"}, want: []string{"evt-3"}},
		{name: "any keyword matches", keywords: []string{"brooke", "gym"}, want: []string{"evt-1", "evt-3"}},
		{name: "like wildcards are literal", keywords: []string{"100%"}, want: []string{"evt-2"}},
		{name: "underscore is literal", keywords: []string{"_"}, want: nil},
		{name: "no keywords", keywords: nil, want: nil},
		{name: "blank keywords", keywords: []string{" ", ""}, want: nil},
		{name: "no overlap", keywords: []string{"vacation"}, want: nil},
		{name: "non-ascii title folds case", keywords: []string{"élodie"}, want: []string{"evt-4"}},
		{name: "non-ascii keyword folds case", keywords: []string{"RÉUNION"}, want: []string{"evt-4"}},
		{name: "non-ascii body folds case", keywords: []string{"ørsted"}, want: []string{"evt-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := db.SearchRecords(user.ID, service.ServiceCalendar, tt.keywords)
			require.NoError(t, err)

			var ids []string
			for _, r := range found {
				ids = append(ids, r.ProviderID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestClearRecords(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUser(t, db)
	other := CreateTestUserWithEmail(t, db, "other@example.com")

	_, err := db.CreateRecord(newTestRecord(user.ID, service.ServiceCalendar, "evt-1", "Dentist", ""))
	require.NoError(t, err)
	_, err = db.CreateRecord(newTestRecord(user.ID, service.ServiceMeeting, "evt-2", "Standup", ""))
	require.NoError(t, err)
	_, err = db.CreateRecord(newTestRecord(other.ID, service.ServiceCalendar, "evt-3", "Gym", ""))
	require.NoError(t, err)

	n, err := db.ClearRecords(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mine, err := db.ListRecords(user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := db.ListRecords(other.ID, "")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}
