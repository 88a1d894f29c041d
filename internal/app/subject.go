package app

import "reserver_notifier/internal/domain/notification"

const defaultSubject = "Cruise reservation system notification"

// SubjectFor returns the e-mail subject line for a notification kind.
func SubjectFor(kind notification.Kind) string {
	switch kind {
	case notification.KindCruiseAdministration:
		return "Cruise administration notification"
	case notification.KindCruiseDeparture:
		return "Cruise departure notification"
	case notification.KindSeason:
		return "Season opening notification"
	case notification.KindOther:
		return "Notification"
	case notification.KindUnknown:
		return defaultSubject
	default:
		return defaultSubject
	}
}
