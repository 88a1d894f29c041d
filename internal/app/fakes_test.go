package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"reserver_notifier/internal/domain/mail"
	"reserver_notifier/internal/domain/notification"
	"reserver_notifier/internal/domain/user"

	"github.com/sirupsen/logrus"
)

type fakeUserRepo struct {
	users []*user.User
	err   error
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role user.Role) ([]*user.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*user.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// memStore is an in-memory notification store plus delivery log.
type memStore struct {
	mu         sync.Mutex
	notifs     map[int64]*notification.Notification
	deliveries map[int64]map[string]struct{}
	getErr     error
	claimErr   error
	markSent   int
}

func newMemStore(notifs ...*notification.Notification) *memStore {
	s := &memStore{
		notifs:     make(map[int64]*notification.Notification),
		deliveries: make(map[int64]map[string]struct{}),
	}
	for _, n := range notifs {
		s.notifs[n.ID] = n
	}
	return s
}

func (s *memStore) state(id int64) (sent, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifs[id].IsSent, s.notifs[id].IsActive
}

func (s *memStore) GetByID(_ context.Context, id int64) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	n, ok := s.notifs[id]
	if !ok {
		return nil, errors.New("email notification not found")
	}
	cp := *n
	return &cp, nil
}

func (s *memStore) ListUnsent(context.Context) ([]*notification.Notification, error) {
	return nil, nil
}

func (s *memStore) ResetActive(context.Context) (int64, error) { return 0, nil }

func (s *memStore) ClaimSchedule(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notifs[id]
	if n.IsActive || n.IsSent {
		return false, nil
	}
	n.IsActive = true
	return true, nil
}

func (s *memStore) ReleaseSchedule(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifs[id]
	if !ok {
		return errors.New("email notification not found")
	}
	n.IsActive = false
	return nil
}

func (s *memStore) ClaimForDispatch(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return false, s.claimErr
	}
	n := s.notifs[id]
	if n.IsSent {
		return false, nil
	}
	n.IsSent = true
	return true, nil
}

func (s *memStore) ReleaseClaim(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifs[id].IsSent = false
	s.notifs[id].IsActive = false
	return nil
}

func (s *memStore) MarkSent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markSent++
	s.notifs[id].IsSent = true
	s.notifs[id].IsActive = false
	return nil
}

func (s *memStore) RecordDelivery(_ context.Context, id int64, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deliveries[id] == nil {
		s.deliveries[id] = make(map[string]struct{})
	}
	s.deliveries[id][strings.ToLower(address)] = struct{}{}
	return nil
}

func (s *memStore) ListDelivered(_ context.Context, id int64) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{})
	for k := range s.deliveries[id] {
		out[k] = struct{}{}
	}
	return out, nil
}

// recordingTransport captures sent messages and fails for configured addresses.
type recordingTransport struct {
	name   string
	mu     sync.Mutex
	sent   []mail.Message
	failTo map[string]error
}

func newRecordingTransport(name string) *recordingTransport {
	return &recordingTransport{name: name, failTo: make(map[string]error)}
}

func (t *recordingTransport) Name() string { return t.name }

func (t *recordingTransport) Send(_ context.Context, msg mail.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err, ok := t.failTo[msg.To[0]]; ok {
		return err
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *recordingTransport) setFailure(addr string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		delete(t.failTo, addr)
		return
	}
	t.failTo[addr] = err
}

func (t *recordingTransport) recipients() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.sent))
	for _, m := range t.sent {
		out = append(out, m.To...)
	}
	return out
}

func (t *recordingTransport) messages() []mail.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]mail.Message(nil), t.sent...)
}

type stubRenderer struct{ err error }

func (r stubRenderer) Render(n *notification.Notification) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "<p>" + n.Template.Message + "</p>", nil
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (a *recordingAlerter) Alert(_ context.Context, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, text)
	return nil
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func person(id int64, email string, role user.Role) user.User {
	return user.User{ID: id, Username: email, FirstName: "User", LastName: email, Email: email, Role: role}
}

func cruiseDayEvent(category string) *notification.Event {
	return &notification.Event{
		ID:       10,
		Name:     "Cruise day",
		Category: category,
		Cruise: &notification.Cruise{
			ID:     3,
			Leader: person(1, "leader@example.org", user.RoleInternal),
			Owners: []user.User{
				person(2, "owner1@example.org", user.RoleInternal),
				person(3, "owner2@example.org", user.RoleExternal),
			},
			Participants: []notification.Participant{
				{ID: 1, Name: "Pat", Email: "pat@example.org"},
				{ID: 2, Name: "Leader again", Email: "LEADER@example.org"},
			},
		},
	}
}
