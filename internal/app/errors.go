package app

import "errors"

var (
	// ErrUnknownCategory means neither the template group nor the event category matched
	// a known notification kind.
	ErrUnknownCategory = errors.New("unable to determine email category")
	// ErrNotCruiseDay means a cruise notification is linked to an event that is not a cruise day.
	ErrNotCruiseDay = errors.New("event is not a cruise day")
	// ErrNoOrderWindow means a season notification is linked to neither order window event.
	ErrNoOrderWindow = errors.New("season event is neither an internal nor an external order window")
	// ErrAlreadySent is returned when a notification was sent or claimed by another job.
	ErrAlreadySent = errors.New("notification already sent")
	// ErrDeliveryFailed wraps channel failures for one or more recipients.
	ErrDeliveryFailed = errors.New("notification delivery failed")
	// ErrNoProductionTransport is returned when DEBUG is off but no SMTP transport was configured.
	ErrNoProductionTransport = errors.New("production mail transport not configured")
)

// IsResolutionError reports whether err came from recipient resolution, i.e. a
// misconfigured notification rather than an infrastructure failure.
func IsResolutionError(err error) bool {
	return errors.Is(err, ErrUnknownCategory) || errors.Is(err, ErrNotCruiseDay) || errors.Is(err, ErrNoOrderWindow)
}
