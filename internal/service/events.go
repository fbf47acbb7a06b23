package service

import (
	"encoding/json"
	"io"
	"time"

	"userapi/internal/model"
)

// UserEventType identifies a user lifecycle transition.
type UserEventType string

const (
	UserCreated UserEventType = "user_created"
	UserUpdated UserEventType = "user_updated"
	UserDeleted UserEventType = "user_deleted"
)

// UserEvent describes a completed change to a user record.
type UserEvent struct {
	Type UserEventType `json:"event"`
	User model.User    `json:"user"`
	At   time.Time     `json:"at"`
}

// UserListener receives user lifecycle events after the change has been
// persisted. Notification is synchronous; listeners must not block.
type UserListener interface {
	NotifyUserEvent(e UserEvent)
}

// LogListener writes one JSON object per event, matching the request logger
// output format.
type LogListener struct {
	enc *json.Encoder
}

// NewLogListener creates a listener that encodes events to w.
func NewLogListener(w io.Writer) *LogListener {
	return &LogListener{enc: json.NewEncoder(w)}
}

var _ UserListener = (*LogListener)(nil)

func (l *LogListener) NotifyUserEvent(e UserEvent) {
	_ = l.enc.Encode(map[string]any{
		"event":   string(e.Type),
		"user_id": e.User.ID,
		"email":   e.User.Email,
		"ts":      e.At.Format(time.RFC3339Nano),
	})
}
