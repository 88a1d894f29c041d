package notification

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cruiseDay := &Event{Category: "Cruise day", Cruise: &Cruise{ID: 1}}
	cases := []struct {
		name string
		n    *Notification
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"no template", &Notification{Event: cruiseDay}, KindUnknown},
		{"administration", &Notification{Template: &Template{Group: GroupCruiseAdministration}, Event: cruiseDay}, KindCruiseAdministration},
		{"departure", &Notification{Template: &Template{Group: GroupCruiseDeparture}, Event: cruiseDay}, KindCruiseDeparture},
		{"season category", &Notification{Template: &Template{Group: GroupSeason}, Event: &Event{Category: CategorySeason}}, KindSeason},
		{"other category", &Notification{Template: &Template{Group: GroupOther}, Event: &Event{Category: CategoryOther}}, KindOther},
		{"category wins over group", &Notification{Template: &Template{Group: GroupOther}, Event: &Event{Category: CategorySeason}}, KindSeason},
		{"no event other group", &Notification{Template: &Template{Group: GroupOther}}, KindOther},
		{"no event season group", &Notification{Template: &Template{Group: GroupSeason}}, KindUnknown},
		{"unknown category", &Notification{Template: &Template{Group: GroupSeason}, Event: &Event{Category: "Red day"}}, KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.n))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "cruise_administration", KindCruiseAdministration.String())
	assert.Equal(t, "cruise_departure", KindCruiseDeparture.String())
	assert.Equal(t, "season", KindSeason.String())
	assert.Equal(t, "other", KindOther.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestSendTime(t *testing.T) {
	start := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fixed date wins", func(t *testing.T) {
		n := &Notification{
			Template: &Template{Date: sql.NullTime{Time: fixed, Valid: true}, TimeBefore: time.Hour},
			Event:    &Event{Start: start},
		}
		got, ok := n.SendTime()
		assert.True(t, ok)
		assert.Equal(t, fixed, got)
	})

	t.Run("relative to event start", func(t *testing.T) {
		n := &Notification{Template: &Template{TimeBefore: 48 * time.Hour}, Event: &Event{Start: start}}
		got, ok := n.SendTime()
		assert.True(t, ok)
		assert.Equal(t, start.Add(-48*time.Hour), got)
	})

	t.Run("zero offset is event start", func(t *testing.T) {
		n := &Notification{Template: &Template{}, Event: &Event{Start: start}}
		got, ok := n.SendTime()
		assert.True(t, ok)
		assert.Equal(t, start, got)
	})

	t.Run("no date and no event", func(t *testing.T) {
		_, ok := (&Notification{Template: &Template{TimeBefore: time.Hour}}).SendTime()
		assert.False(t, ok)
	})

	t.Run("no template", func(t *testing.T) {
		_, ok := (&Notification{Event: &Event{Start: start}}).SendTime()
		assert.False(t, ok)
	})
}

func TestState(t *testing.T) {
	assert.Equal(t, StatePending, (&Notification{}).State())
	assert.Equal(t, StateScheduled, (&Notification{IsActive: true}).State())
	assert.Equal(t, StateSent, (&Notification{IsSent: true}).State())
	assert.Equal(t, StateSent, (&Notification{IsSent: true, IsActive: true}).State())
}

func TestRecipientSet(t *testing.T) {
	var s RecipientSet
	assert.Empty(t, s.Items())
	assert.NotNil(t, s.Items())

	s.Add("a@example.org", " Anna ")
	s.Add("", "Nobody")
	s.Add("   ", "Blank")
	s.Add("A@Example.org", "Anna again")
	s.Add(" b@example.org ", "Bo")

	assert.Equal(t, []Recipient{
		{Address: "a@example.org", Name: "Anna"},
		{Address: "b@example.org", Name: "Bo"},
	}, s.Items())
}

func TestEventPredicatesNilSafe(t *testing.T) {
	var e *Event
	assert.False(t, e.IsCruiseDay())
	assert.False(t, e.IsInternalOrder())
	assert.False(t, e.IsExternalOrder())
	assert.True(t, (&Event{Cruise: &Cruise{}}).IsCruiseDay())
}
