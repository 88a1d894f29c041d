package notification

// Kind is the resolved category of a notification. Every consumer switches over all
// values, including KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindCruiseAdministration
	KindCruiseDeparture
	KindSeason
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindCruiseAdministration:
		return "cruise_administration"
	case KindCruiseDeparture:
		return "cruise_departure"
	case KindSeason:
		return "season"
	case KindOther:
		return "other"
	case KindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Classify determines the kind of a notification. The template group decides for the
// cruise specific groups; otherwise the event category decides. A notification without an
// event falls back to its template group for Other.
func Classify(n *Notification) Kind {
	if n == nil || n.Template == nil {
		return KindUnknown
	}
	switch n.Template.Group {
	case GroupCruiseAdministration:
		return KindCruiseAdministration
	case GroupCruiseDeparture:
		return KindCruiseDeparture
	}
	if n.Event == nil {
		if n.Template.Group == GroupOther {
			return KindOther
		}
		return KindUnknown
	}
	switch n.Event.Category {
	case CategorySeason:
		return KindSeason
	case CategoryOther:
		return KindOther
	default:
		return KindUnknown
	}
}
