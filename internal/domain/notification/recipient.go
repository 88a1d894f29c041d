package notification

import "strings"

// Recipient is a resolved delivery address.
type Recipient struct {
	Address string
	Name    string
}

// RecipientSet accumulates recipients in insertion order, dropping blank and
// duplicate addresses (compared case-insensitively).
type RecipientSet struct {
	seen  map[string]struct{}
	items []Recipient
}

func (s *RecipientSet) Add(address, name string) {
	address = strings.TrimSpace(address)
	if address == "" {
		return
	}
	key := strings.ToLower(address)
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, Recipient{Address: address, Name: strings.TrimSpace(name)})
}

// Items returns the recipients collected so far; never nil.
func (s *RecipientSet) Items() []Recipient {
	if s.items == nil {
		return []Recipient{}
	}
	return s.items
}
