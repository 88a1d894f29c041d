package app

import (
	"context"
	"fmt"

	"reserver_notifier/internal/domain/notification"
	"reserver_notifier/internal/domain/user"
)

// RecipientResolver computes who receives a notification. It never writes.
type RecipientResolver struct {
	users user.Repository
}

func NewRecipientResolver(users user.Repository) *RecipientResolver {
	return &RecipientResolver{users: users}
}

// Resolve returns the recipients of a hydrated notification (see
// notification.Repository.GetByID). The order is stable: leader, owners, participants,
// or users by id.
func (r *RecipientResolver) Resolve(ctx context.Context, n *notification.Notification) ([]notification.Recipient, error) {
	var set notification.RecipientSet

	switch kind := notification.Classify(n); kind {
	case notification.KindCruiseAdministration:
		if !n.Event.IsCruiseDay() {
			return nil, fmt.Errorf("%w: notification %d (%s)", ErrNotCruiseDay, n.ID, kind)
		}
		addCruiseCrew(&set, n.Event.Cruise)
	case notification.KindCruiseDeparture:
		if !n.Event.IsCruiseDay() {
			return nil, fmt.Errorf("%w: notification %d (%s)", ErrNotCruiseDay, n.ID, kind)
		}
		addCruiseCrew(&set, n.Event.Cruise)
		for _, p := range n.Event.Cruise.Participants {
			set.Add(p.Email, p.Name)
		}
	case notification.KindSeason:
		var role user.Role
		switch {
		case n.Event.IsInternalOrder():
			role = user.RoleInternal
		case n.Event.IsExternalOrder():
			role = user.RoleExternal
		default:
			return nil, fmt.Errorf("%w: notification %d", ErrNoOrderWindow, n.ID)
		}
		users, err := r.users.ListByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s users: %w", role, err)
		}
		for _, u := range users {
			set.Add(u.Email, u.FullName())
		}
	case notification.KindOther:
		for _, u := range n.Recipients {
			set.Add(u.Email, u.FullName())
		}
	case notification.KindUnknown:
		return nil, fmt.Errorf("%w: notification %d", ErrUnknownCategory, n.ID)
	default:
		return nil, fmt.Errorf("%w: notification %d (kind %d)", ErrUnknownCategory, n.ID, kind)
	}

	return set.Items(), nil
}

func addCruiseCrew(set *notification.RecipientSet, c *notification.Cruise) {
	set.Add(c.Leader.Email, c.Leader.FullName())
	for _, o := range c.Owners {
		set.Add(o.Email, o.FullName())
	}
}
