package notification

import (
	"time"

	"reserver_notifier/internal/domain/user"
)

// Notification is an intent to e-mail a set of recipients at a computed time.
// Corresponds to the 'reserver_emailnotification' table.
type Notification struct {
	ID         int64
	Event      *Event // Optional
	Template   *Template
	IsSent     bool
	IsActive   bool        // A job for this notification is armed in the running scheduler
	Recipients []user.User // Explicitly chosen users, only used by KindOther
}

// SendTime derives when the notification should fire. A fixed template date wins;
// otherwise the time is counted back from the event start. ok is false when neither is
// available.
func (n *Notification) SendTime() (t time.Time, ok bool) {
	if n.Template == nil {
		return time.Time{}, false
	}
	if n.Template.Date.Valid {
		return n.Template.Date.Time, true
	}
	if n.Event == nil || n.Event.Start.IsZero() {
		return time.Time{}, false
	}
	return n.Event.Start.Add(-n.Template.TimeBefore), true
}

// State is the position of a notification in its send lifecycle.
type State string

const (
	StatePending     State = "PENDING"
	StateScheduled   State = "SCHEDULED"
	StateDispatching State = "DISPATCHING" // Claimed by a dispatch job, delivery in progress
	StateSent        State = "SENT"
)

// State reports the persisted lifecycle state. Dispatching is persisted as is_sent=true
// while the job holds the claim, so it is indistinguishable from Sent here.
func (n *Notification) State() State {
	switch {
	case n.IsSent:
		return StateSent
	case n.IsActive:
		return StateScheduled
	default:
		return StatePending
	}
}
