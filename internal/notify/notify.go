// Package notify defines the reminder events handed to the external
// notification service.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mmynk/groupledger/internal/models"
)

// Notifier publishes reminder events. Delivery to the participant is the
// receiver's concern.
type Notifier interface {
	PublishReminder(ctx context.Context, msg *ReminderMessage) error
}

// ReminderMessage asks the notification service to nudge a participant
// about an unpaid split request share.
type ReminderMessage struct {
	SplitRequestID string    `json:"split_request_id"`
	RequesterID    string    `json:"requester_id"`
	GroupID        string    `json:"group_id,omitempty"`
	Description    string    `json:"description,omitempty"`
	UserID         string    `json:"user_id"`
	AmountOwed     string    `json:"amount_owed"`
	LastRemindedAt int64     `json:"last_reminded_at,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewReminderMessage builds the event for a due reminder target.
func NewReminderMessage(t models.ReminderTarget, now time.Time) *ReminderMessage {
	return &ReminderMessage{
		SplitRequestID: t.SplitRequestID,
		RequesterID:    t.RequesterID,
		GroupID:        t.GroupID,
		Description:    t.Description,
		UserID:         t.UserID,
		AmountOwed:     t.AmountOwed.String(),
		LastRemindedAt: t.ReminderSentAt,
		Timestamp:      now,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderMessageFromJSON decodes a message published by PublishReminder.
func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// LogNotifier writes reminders to the log. It is used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) PublishReminder(ctx context.Context, msg *ReminderMessage) error {
	slog.InfoContext(ctx, "Payment reminder",
		"split_request_id", msg.SplitRequestID,
		"user_id", msg.UserID,
		"amount_owed", msg.AmountOwed,
		"requester", msg.RequesterID,
	)
	return nil
}
