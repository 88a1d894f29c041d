package notification

import (
	"time"

	"reserver_notifier/internal/domain/user"
)

// Event category names as stored in 'reserver_eventcategory'.
const (
	CategorySeason = "Season"
	CategoryOther  = "Other"
)

// Event is a calendar entry. A cruise day event links a Cruise; the internal and external
// order events of a season open the ordering window for the respective user role.
type Event struct {
	ID            int64
	Name          string
	Start         time.Time
	End           time.Time
	Category      string
	Cruise        *Cruise // Set when the event is a cruise day
	InternalOrder bool
	ExternalOrder bool
}

func (e *Event) IsCruiseDay() bool {
	return e != nil && e.Cruise != nil
}

func (e *Event) IsInternalOrder() bool {
	return e != nil && e.InternalOrder
}

func (e *Event) IsExternalOrder() bool {
	return e != nil && e.ExternalOrder
}

// Cruise carries the people that cruise notifications are addressed to.
type Cruise struct {
	ID           int64
	Leader       user.User
	Owners       []user.User
	Participants []Participant
}

// Participant is a person on board; participants do not need a user account.
type Participant struct {
	ID    int64
	Name  string
	Email string
}
