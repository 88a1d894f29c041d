package database

import (
	"context"
	"database/sql"
	"fmt"

	"reserver_notifier/internal/domain/user"

	"github.com/lib/pq"
)

const userSelect = `SELECT u.id, u.username, u.first_name, u.last_name, u.email, COALESCE(ud.role, '')
               FROM auth_user u
               LEFT JOIN reserver_userdata ud ON ud.user_id = u.id`

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// ListByRole returns users with the given role ordered by id.
func (r *PostgresUserRepository) ListByRole(ctx context.Context, role user.Role) ([]*user.User, error) {
	return r.ListByRoles(ctx, role)
}

// ListByRoles returns users holding any of the given roles ordered by id.
func (r *PostgresUserRepository) ListByRoles(ctx context.Context, roles ...user.Role) ([]*user.User, error) {
	if len(roles) == 0 {
		return []*user.User{}, nil
	}
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	rows, err := r.db.QueryContext(ctx, userSelect+`
               WHERE ud.role = ANY($1::varchar[])
               ORDER BY u.id`, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("error listing users by role: %w", err)
	}
	return scanUsers(rows)
}

// scanUsers reads and closes rows of (id, username, first_name, last_name, email, role).
func scanUsers(rows *sql.Rows) ([]*user.User, error) {
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u := &user.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
