package notification

import (
	"context"
)

// Repository defines the operations the scheduler performs on notification records.
// Every mutating method is a single atomic statement.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Notification, error)
	// ListUnsent returns notifications with is_sent = false.
	ListUnsent(ctx context.Context) ([]*Notification, error)

	// ResetActive clears is_active on every notification and returns how many were reset.
	ResetActive(ctx context.Context) (int64, error)
	// ClaimSchedule sets is_active false->true for an unsent notification.
	// It reports false when another scan already armed a job for it.
	ClaimSchedule(ctx context.Context, id int64) (bool, error)
	// ReleaseSchedule sets is_active back to false.
	ReleaseSchedule(ctx context.Context, id int64) error
	// ClaimForDispatch sets is_sent false->true. It reports false when the notification
	// was already claimed or sent.
	ClaimForDispatch(ctx context.Context, id int64) (bool, error)
	// ReleaseClaim returns a claimed notification to pending (is_sent = false, is_active = false).
	ReleaseClaim(ctx context.Context, id int64) error
	// MarkSent finalizes a claimed notification (is_sent = true, is_active = false).
	MarkSent(ctx context.Context, id int64) error
}

// DeliveryLog records which addresses already received a notification, so a retried
// dispatch only sends to the remaining recipients.
type DeliveryLog interface {
	RecordDelivery(ctx context.Context, notificationID int64, address string) error
	ListDelivered(ctx context.Context, notificationID int64) (map[string]struct{}, error)
}
