package services

import "sync"

// SessionStore hands each authenticated operator their own ticket controller.
// A controller lives for the whole session so the active ticket survives
// between requests.
type SessionStore struct {
	mu          sync.Mutex
	controllers map[string]*TicketController
	bridge      Bridge
}

func NewSessionStore(bridge Bridge) *SessionStore {
	return &SessionStore{
		controllers: map[string]*TicketController{},
		bridge:      bridge,
	}
}

// Controller returns the operator's controller, creating it on first use.
func (s *SessionStore) Controller(operator string) *TicketController {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.controllers[operator]
	if !ok {
		c = NewTicketController(operator, s.bridge)
		s.controllers[operator] = c
	}
	return c
}

// Drop forgets an operator's controller, e.g. on logout.
func (s *SessionStore) Drop(operator string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.controllers, operator)
}
