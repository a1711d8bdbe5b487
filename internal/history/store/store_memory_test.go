package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickethub/internal/history/models"
	id "tickethub/pkg/domain"
)

func TestInMemoryListTickets(t *testing.T) {
	ctx := context.Background()
	st := NewInMemory(id.ModeBus)
	st.AddTicket(models.ListConfirmed, models.Ticket{TicketID: "B-1", UserID: 1, ScheduleID: 10, Seats: []string{"A1"}})
	st.AddTicket(models.ListConfirmed, models.Ticket{TicketID: "B-2", UserID: 2, ScheduleID: 10})
	st.AddTicket(models.ListQueued, models.Ticket{TicketID: "B-3", UserID: 1, ScheduleID: 11})

	confirmed, err := st.ListTickets(ctx, models.ListConfirmed, 1)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "B-1", confirmed[0].TicketID)

	confirmed[0].Seats[0] = "Z9"
	again, err := st.ListTickets(ctx, models.ListConfirmed, 1)
	require.NoError(t, err)
	assert.Equal(t, "A1", again[0].Seats[0], "returned tickets must not alias store state")

	queued, err := st.ListTickets(ctx, models.ListQueued, 1)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	none, err := st.ListTickets(ctx, models.ListQueued, 3)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = st.ListTickets(ctx, models.ListKind("cancelled"), 1)
	assert.Error(t, err)
}

func TestInMemoryResolveSchedule(t *testing.T) {
	ctx := context.Background()
	st := NewInMemory(id.ModeAir)
	st.AddSchedule(models.ScheduleReference{
		ScheduleID:  5,
		CompanyName: "Sky",
		JourneyDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	st.AddClass(3, "Business")

	ref, err := st.ResolveSchedule(ctx, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, "Business", ref.ClassName)

	ref, err = st.ResolveSchedule(ctx, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, ref.ClassName)

	st.DeleteSchedule(5)
	_, err = st.ResolveSchedule(ctx, 5, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryFailReads(t *testing.T) {
	ctx := context.Background()
	st := NewInMemory(id.ModeTrain)
	boom := errors.New("connection refused")
	st.FailReads(boom)

	_, err := st.ListTickets(ctx, models.ListConfirmed, 1)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, st.Ping(ctx), boom)

	st.FailReads(nil)
	_, err = st.ListTickets(ctx, models.ListConfirmed, 1)
	assert.NoError(t, err)
}

func TestInMemoryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInMemory(id.ModeBus).ListTickets(ctx, models.ListConfirmed, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
