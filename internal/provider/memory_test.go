package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhajsf/Plan-it/internal/gcal"
	"github.com/minhajsf/Plan-it/internal/gmail"
	"github.com/minhajsf/Plan-it/internal/payload"
	"github.com/minhajsf/Plan-it/internal/service"
)

func TestMemoryEventLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	res, err := m.Insert(ctx, service.ServiceMeeting, payload.Payload{"summary": "Sync"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Contains(t, res.Link, "meet")

	updated, err := m.Update(ctx, service.ServiceMeeting, res.ID, payload.Payload{"summary": "Sync v2"})
	require.NoError(t, err)
	assert.Equal(t, res.ID, updated.ID)

	got, ok := m.Get(res.ID)
	require.True(t, ok)
	assert.Equal(t, "Sync v2", got.String("summary"))

	_, err = m.Update(ctx, service.ServiceCalendar, res.ID, payload.Payload{})
	assert.ErrorIs(t, err, gcal.ErrEventNotFound)

	require.NoError(t, m.Delete(ctx, service.ServiceMeeting, res.ID))
	assert.Zero(t, m.Len())
	assert.ErrorIs(t, m.Delete(ctx, service.ServiceMeeting, res.ID), gcal.ErrEventNotFound)
}

func TestMemoryDrafts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	res, err := m.Insert(ctx, service.ServiceMail, payload.Payload{"subject": "Report", "body": "Attached"})
	require.NoError(t, err)
	assert.Empty(t, res.Link)

	assert.ErrorIs(t, m.Delete(ctx, service.ServiceMail, res.ID), ErrUnsupported)

	require.NoError(t, m.Send(ctx, res.ID))
	require.Len(t, m.Sent(), 1)
	assert.Equal(t, "Report", m.Sent()[0].String("subject"))
	assert.ErrorIs(t, m.Send(ctx, res.ID), gmail.ErrDraftNotFound)

	m.Reset()
	assert.Empty(t, m.Sent())
}
