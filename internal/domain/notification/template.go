package notification

import (
	"database/sql"
	"time"
)

// Group is the category tag an administrator picks for an e-mail template.
type Group string

const (
	GroupCruiseAdministration Group = "Cruise administration"
	GroupCruiseDeparture      Group = "Cruise departure"
	GroupSeason               Group = "Season"
	GroupOther                Group = "Other"
)

// Template is reusable message content.
// Corresponds to the 'reserver_emailtemplate' table.
type Template struct {
	ID         int64
	Title      string
	Group      Group
	Message    string
	IsActive   bool
	IsMuteable bool
	Date       sql.NullTime  // Fixed send date; takes precedence over TimeBefore
	TimeBefore time.Duration // How long before the event start the mail goes out
}
