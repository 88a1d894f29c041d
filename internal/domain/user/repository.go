package user

import (
	"context"
)

// Repository defines the read operations the scheduler needs on user accounts.
type Repository interface {
	// ListByRole returns users with the given role ordered by id.
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}
