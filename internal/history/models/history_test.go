package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tickethub/pkg/domain"
)

func TestJourneyPassed(t *testing.T) {
	dhaka := time.FixedZone("UTC+6", 6*60*60)
	today := time.Date(2026, 3, 15, 23, 59, 0, 0, dhaka)

	tests := []struct {
		name    string
		journey time.Time
		want    bool
	}{
		{"yesterday", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), true},
		{"today at midnight", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"today late in the day", time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC), false},
		{"tomorrow", time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), false},
		{"previous month, later day", time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), true},
		{"previous year, later month", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"next year, earlier month", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JourneyPassed(tt.journey, today))
		})
	}
}

func TestEnrich(t *testing.T) {
	today := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	ticket := Ticket{TicketID: "B-1", UserID: 1, ScheduleID: 9, Seats: []string{"A1"}}

	t.Run("unresolved schedule keeps the ticket bare", func(t *testing.T) {
		out := Enrich(ticket, nil, today)
		assert.Equal(t, ticket, out.Ticket)
		assert.Nil(t, out.Schedule)
		assert.Nil(t, out.JourneyPassed)

		raw, err := json.Marshal(out)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "journeyPassed")
		assert.NotContains(t, string(raw), "schedule\"")
	})

	t.Run("resolved schedule", func(t *testing.T) {
		out := Enrich(ticket, &ScheduleReference{
			ScheduleID:    9,
			CompanyID:     4,
			CompanyName:   "Green Line",
			DepartureTime: "08:30",
			JourneyDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			ClassName:     "AC",
		}, today)
		require.NotNil(t, out.Schedule)
		require.NotNil(t, out.JourneyPassed)
		assert.True(t, *out.JourneyPassed)
		assert.Equal(t, "2026-03-14", out.Schedule.JourneyDate)
		assert.Equal(t, "Green Line", out.Schedule.CompanyName)
	})
}

func TestUnifiedHistorySection(t *testing.T) {
	h := &UnifiedHistory{}
	for _, mode := range id.AllModes {
		require.NotNil(t, h.Section(mode), mode)
	}
	h.Section(id.ModeAir).Error = &SectionError{Code: "unavailable", Message: "air store unavailable"}
	assert.True(t, h.Air.Failed())
	assert.False(t, h.Bus.Failed())
	assert.Nil(t, h.Section(id.Mode("ship")))
}
