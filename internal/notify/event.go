// Package notify announces provisioned admins on a best-effort side channel.
//
// The provisioning service hands events to a Dispatcher, which buffers them
// and delivers them to a Sink (Kafka, RabbitMQ or the log) on a background
// worker. Delivery failures are logged and never reach the caller.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AdminProvisioned is published after an admin identity has been created or
// approved.
type AdminProvisioned struct {
	EventID     string    `json:"eventId"`
	OccurredAt  time.Time `json:"occurredAt"`
	AdminID     int64     `json:"adminId"`
	Username    string    `json:"username"`
	AdminName   string    `json:"adminName"`
	AdminRole   string    `json:"adminRole"`
	CompanyName string    `json:"companyName,omitempty"`
	Status      string    `json:"status"`
}

// NewAdminProvisioned stamps an event id and time onto the summary.
func NewAdminProvisioned(now time.Time, adminID int64, username, adminName, role, companyName, status string) AdminProvisioned {
	return AdminProvisioned{
		EventID:     uuid.NewString(),
		OccurredAt:  now.UTC(),
		AdminID:     adminID,
		Username:    username,
		AdminName:   adminName,
		AdminRole:   role,
		CompanyName: companyName,
		Status:      status,
	}
}

func (e AdminProvisioned) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Sink delivers one event synchronously.
type Sink interface {
	Publish(ctx context.Context, event AdminProvisioned) error
	Close() error
}
