// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"reserver_notifier/internal/domain/notification"
	"reserver_notifier/internal/domain/user"
)

// Custom errors specific to notification repository
var ErrNotificationNotFound = fmt.Errorf("email notification not found")
var ErrCruiseNotFound = fmt.Errorf("cruise not found")

// The web application owns every table except reserver_notification_delivery.
const notificationSelect = `SELECT n.id, n.is_sent, n.is_active,
       t.id, t.title, t."group", t.message, t.is_active, t.is_muteable, t.date,
       COALESCE(EXTRACT(EPOCH FROM t.time_before), 0),
       e.id, e.name, e.start_time, e.end_time, c.name, cd.cruise_id,
       EXISTS (SELECT 1 FROM reserver_season s WHERE s.internal_order_event_id = e.id),
       EXISTS (SELECT 1 FROM reserver_season s WHERE s.external_order_event_id = e.id)
  FROM reserver_emailnotification n
  JOIN reserver_emailtemplate t ON t.id = n.template_id
  LEFT JOIN reserver_event e ON e.id = n.event_id
  LEFT JOIN reserver_eventcategory c ON c.id = e.category_id
  LEFT JOIN reserver_cruiseday cd ON cd.event_id = e.id`

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*notification.Notification, error) {
	var (
		n          notification.Notification
		t          notification.Template
		timeBefore float64
		eventID    sql.NullInt64
		eventName  sql.NullString
		eventStart sql.NullTime
		eventEnd   sql.NullTime
		category   sql.NullString
		cruiseID   sql.NullInt64
		internal   bool
		external   bool
	)
	err := row.Scan(
		&n.ID, &n.IsSent, &n.IsActive,
		&t.ID, &t.Title, &t.Group, &t.Message, &t.IsActive, &t.IsMuteable, &t.Date,
		&timeBefore,
		&eventID, &eventName, &eventStart, &eventEnd, &category, &cruiseID,
		&internal, &external,
	)
	if err != nil {
		return nil, err
	}
	t.TimeBefore = time.Duration(timeBefore * float64(time.Second))
	n.Template = &t
	if eventID.Valid {
		n.Event = &notification.Event{
			ID:            eventID.Int64,
			Name:          eventName.String,
			Start:         eventStart.Time,
			End:           eventEnd.Time,
			Category:      category.String,
			InternalOrder: internal,
			ExternalOrder: external,
		}
		if cruiseID.Valid {
			n.Event.Cruise = &notification.Cruise{ID: cruiseID.Int64}
		}
	}
	return &n, nil
}

// GetByID returns a fully hydrated notification: cruise leader, owners, participants and
// the explicitly chosen recipients are loaded.
func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx, notificationSelect+` WHERE n.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("error getting email notification by ID: %w", err)
	}

	if n.Event.IsCruiseDay() {
		cruise, err := r.getCruise(ctx, n.Event.Cruise.ID)
		if err != nil {
			return nil, err
		}
		n.Event.Cruise = cruise
	}

	n.Recipients, err = r.listRecipients(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListUnsent returns unsent notifications without cruise membership or explicit recipients;
// use GetByID before resolving recipients.
func (r *PostgresNotificationRepository) ListUnsent(ctx context.Context) ([]*notification.Notification, error) {
	return r.list(ctx, notificationSelect+` WHERE n.is_sent = FALSE ORDER BY n.id`)
}

func (r *PostgresNotificationRepository) list(ctx context.Context, query string) ([]*notification.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying email notifications: %w", err)
	}
	defer rows.Close()

	notifs := make([]*notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning email notification row: %w", err)
		}
		notifs = append(notifs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating email notification rows: %w", err)
	}
	return notifs, nil
}

func (r *PostgresNotificationRepository) getCruise(ctx context.Context, cruiseID int64) (*notification.Cruise, error) {
	cruise := &notification.Cruise{ID: cruiseID}
	query := `SELECT u.id, u.username, u.first_name, u.last_name, u.email, COALESCE(ud.role, '')
               FROM reserver_cruise cr
               JOIN auth_user u ON u.id = cr.leader_id
               LEFT JOIN reserver_userdata ud ON ud.user_id = u.id
               WHERE cr.id = $1`
	err := r.db.QueryRowContext(ctx, query, cruiseID).Scan(
		&cruise.Leader.ID, &cruise.Leader.Username, &cruise.Leader.FirstName,
		&cruise.Leader.LastName, &cruise.Leader.Email, &cruise.Leader.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCruiseNotFound
		}
		return nil, fmt.Errorf("error getting cruise leader: %w", err)
	}

	ownerRows, err := r.db.QueryContext(ctx, `SELECT u.id, u.username, u.first_name, u.last_name, u.email, COALESCE(ud.role, '')
               FROM reserver_cruise_owner o
               JOIN auth_user u ON u.id = o.user_id
               LEFT JOIN reserver_userdata ud ON ud.user_id = u.id
               WHERE o.cruise_id = $1 ORDER BY o.id`, cruiseID)
	if err != nil {
		return nil, fmt.Errorf("error querying cruise owners: %w", err)
	}
	owners, err := scanUsers(ownerRows)
	if err != nil {
		return nil, fmt.Errorf("error reading cruise owners: %w", err)
	}
	for _, o := range owners {
		cruise.Owners = append(cruise.Owners, *o)
	}

	partRows, err := r.db.QueryContext(ctx, `SELECT id, name, email FROM reserver_participant
               WHERE cruise_id = $1 ORDER BY id`, cruiseID)
	if err != nil {
		return nil, fmt.Errorf("error querying cruise participants: %w", err)
	}
	defer partRows.Close()
	for partRows.Next() {
		var p notification.Participant
		if err := partRows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			return nil, fmt.Errorf("error scanning cruise participant: %w", err)
		}
		cruise.Participants = append(cruise.Participants, p)
	}
	if err := partRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cruise participants: %w", err)
	}
	return cruise, nil
}

func (r *PostgresNotificationRepository) listRecipients(ctx context.Context, notificationID int64) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT u.id, u.username, u.first_name, u.last_name, u.email, COALESCE(ud.role, '')
               FROM reserver_emailnotification_recipients nr
               JOIN reserver_userdata ud ON ud.id = nr.userdata_id
               JOIN auth_user u ON u.id = ud.user_id
               WHERE nr.emailnotification_id = $1 ORDER BY u.id`, notificationID)
	if err != nil {
		return nil, fmt.Errorf("error querying notification recipients: %w", err)
	}
	users, err := scanUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("error reading notification recipients: %w", err)
	}
	recipients := make([]user.User, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, *u)
	}
	return recipients, nil
}

// --- State transitions ---

func (r *PostgresNotificationRepository) ResetActive(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE reserver_emailnotification SET is_active = FALSE WHERE is_active = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("error resetting active notifications: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresNotificationRepository) ClaimSchedule(ctx context.Context, id int64) (bool, error) {
	return r.compareAndSet(ctx, "claim schedule",
		`UPDATE reserver_emailnotification SET is_active = TRUE
          WHERE id = $1 AND is_active = FALSE AND is_sent = FALSE`, id)
}

func (r *PostgresNotificationRepository) ReleaseSchedule(ctx context.Context, id int64) error {
	return r.exec(ctx, "release schedule",
		`UPDATE reserver_emailnotification SET is_active = FALSE WHERE id = $1`, id)
}

func (r *PostgresNotificationRepository) ClaimForDispatch(ctx context.Context, id int64) (bool, error) {
	return r.compareAndSet(ctx, "claim dispatch",
		`UPDATE reserver_emailnotification SET is_sent = TRUE WHERE id = $1 AND is_sent = FALSE`, id)
}

func (r *PostgresNotificationRepository) ReleaseClaim(ctx context.Context, id int64) error {
	return r.exec(ctx, "release claim",
		`UPDATE reserver_emailnotification SET is_sent = FALSE, is_active = FALSE WHERE id = $1`, id)
}

func (r *PostgresNotificationRepository) MarkSent(ctx context.Context, id int64) error {
	return r.exec(ctx, "mark sent",
		`UPDATE reserver_emailnotification SET is_sent = TRUE, is_active = FALSE WHERE id = $1`, id)
}

func (r *PostgresNotificationRepository) compareAndSet(ctx context.Context, op, query string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("error in %s for notification %d: %w", op, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error in %s for notification %d: %w", op, id, err)
	}
	return n == 1, nil
}

func (r *PostgresNotificationRepository) exec(ctx context.Context, op, query string, id int64) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error in %s for notification %d: %w", op, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error in %s for notification %d: %w", op, id, err)
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// --- Delivery log ---

func (r *PostgresNotificationRepository) RecordDelivery(ctx context.Context, notificationID int64, address string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO reserver_notification_delivery (notification_id, address, delivered_at)
               VALUES ($1, $2, NOW())
               ON CONFLICT (notification_id, address) DO NOTHING`, notificationID, strings.ToLower(address))
	if err != nil {
		return fmt.Errorf("error recording delivery for notification %d: %w", notificationID, err)
	}
	return nil
}

// ListDelivered returns the lower-cased addresses already served for a notification.
func (r *PostgresNotificationRepository) ListDelivered(ctx context.Context, notificationID int64) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT address FROM reserver_notification_delivery WHERE notification_id = $1`, notificationID)
	if err != nil {
		return nil, fmt.Errorf("error querying deliveries for notification %d: %w", notificationID, err)
	}
	defer rows.Close()

	delivered := make(map[string]struct{})
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("error scanning delivery row: %w", err)
		}
		delivered[strings.ToLower(addr)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery rows: %w", err)
	}
	return delivered, nil
}
