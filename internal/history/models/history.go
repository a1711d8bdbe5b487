package models

import (
	"time"

	id "tickethub/pkg/domain"
)

// ListKind selects the confirmed or the queued ticket table of a mode store.
type ListKind string

const (
	ListConfirmed ListKind = "confirmed"
	ListQueued    ListKind = "queued"
)

// DateLayout is the wire format of journey dates.
const DateLayout = "2006-01-02"

// Ticket is a booking row from ticket_info or ticket_queue. Rows are read-only
// here.
type Ticket struct {
	TicketID      string        `json:"ticketId"`
	UserID        id.UserID     `json:"userId"`
	ScheduleID    id.ScheduleID `json:"scheduleId"`
	Seats         []string      `json:"seats"`
	ClassRefID    int64         `json:"-"`
	TotalFare     float64       `json:"totalFare"`
	PassengerName string        `json:"passengerName,omitempty"`
	BookedAt      time.Time     `json:"bookedAt"`
}

// ScheduleReference is a schedule resolved through the schedule, company and
// class/coach tables of one mode store. JourneyDate is a calendar date; only
// its year, month and day are meaningful.
type ScheduleReference struct {
	ScheduleID    id.ScheduleID
	CompanyID     id.CompanyID
	CompanyName   string
	DepartureTime string
	JourneyDate   time.Time
	ClassName     string
	BrandName     string
	StartingPoint string
	Destination   string
}

// JourneyPassed reports whether journeyDate is strictly earlier than today.
// Both are compared as calendar dates, each in its own location, so the time
// of day never matters.
func JourneyPassed(journeyDate, today time.Time) bool {
	jy, jm, jd := journeyDate.Date()
	ty, tm, td := today.Date()
	if jy != ty {
		return jy < ty
	}
	if jm != tm {
		return jm < tm
	}
	return jd < td
}

// ScheduleDetails is the enrichment attached to a ticket.
type ScheduleDetails struct {
	CompanyID     id.CompanyID `json:"companyId"`
	CompanyName   string       `json:"companyName"`
	DepartureTime string       `json:"departureTime"`
	JourneyDate   string       `json:"journeyDate"`
	ClassName     string       `json:"className,omitempty"`
	BrandName     string       `json:"brandName,omitempty"`
	StartingPoint string       `json:"startingPoint,omitempty"`
	Destination   string       `json:"destination,omitempty"`
}

// EnrichedTicket is a ticket plus its schedule context. Schedule and
// JourneyPassed are nil when the schedule no longer resolves.
type EnrichedTicket struct {
	Ticket
	Schedule      *ScheduleDetails `json:"schedule,omitempty"`
	JourneyPassed *bool            `json:"journeyPassed,omitempty"`
}

// Enrich attaches ref to t, classifying the journey against today. A nil ref
// leaves the ticket unenriched.
func Enrich(t Ticket, ref *ScheduleReference, today time.Time) EnrichedTicket {
	out := EnrichedTicket{Ticket: t}
	if ref == nil {
		return out
	}
	passed := JourneyPassed(ref.JourneyDate, today)
	out.JourneyPassed = &passed
	out.Schedule = &ScheduleDetails{
		CompanyID:     ref.CompanyID,
		CompanyName:   ref.CompanyName,
		DepartureTime: ref.DepartureTime,
		JourneyDate:   ref.JourneyDate.Format(DateLayout),
		ClassName:     ref.ClassName,
		BrandName:     ref.BrandName,
		StartingPoint: ref.StartingPoint,
		Destination:   ref.Destination,
	}
	return out
}

// SectionError marks a mode section that could not be assembled.
type SectionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Section holds one mode's confirmed and queued tickets. When Error is set the
// ticket lists are empty and must not be read as "no bookings".
type Section struct {
	Confirmed []EnrichedTicket `json:"confirmed"`
	Queued    []EnrichedTicket `json:"queued"`
	Error     *SectionError    `json:"error,omitempty"`
}

// Failed reports whether the section carries an error marker.
func (s Section) Failed() bool { return s.Error != nil }

// UnifiedHistory groups a user's tickets by mode. Partial is true when at least
// one section failed.
type UnifiedHistory struct {
	UserID      id.UserID `json:"userId"`
	Bus         Section   `json:"bus"`
	Air         Section   `json:"air"`
	Train       Section   `json:"train"`
	Partial     bool      `json:"partial"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Section returns the section for mode, or nil for an unknown mode.
func (h *UnifiedHistory) Section(mode id.Mode) *Section {
	switch mode {
	case id.ModeBus:
		return &h.Bus
	case id.ModeAir:
		return &h.Air
	case id.ModeTrain:
		return &h.Train
	}
	return nil
}
