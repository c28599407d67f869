// Package session keeps per-visitor state on the server, keyed by an id that
// travels in a signed cookie. A Session value belongs to exactly one request.
package session

// User is the minimal identity stored for a logged-in visitor.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Flash types understood by the layout.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashDanger  = "danger"
)

// Data is what the store persists.
type Data struct {
	User  *User  `json:"user,omitempty"`
	Flash *Flash `json:"flash,omitempty"`
}

// Session is the request-scoped view of a visitor's stored data.
type Session struct {
	id        string
	data      Data
	isNew     bool
	dirty     bool
	destroyed bool
	staleID   string
}

func newSession(id string) *Session {
	return &Session{id: id, isNew: true}
}

// ID returns the current session id.
func (s *Session) ID() string {
	return s.id
}

// User returns the logged-in user or nil.
func (s *Session) User() *User {
	return s.data.User
}

// SetUser stores the authenticated identity.
func (s *Session) SetUser(u *User) {
	s.data.User = u
	s.dirty = true
}

// SetFlash replaces any pending flash message.
func (s *Session) SetFlash(kind, text string) {
	s.data.Flash = &Flash{Type: kind, Text: text}
	s.dirty = true
}

// PopFlash returns the pending flash, if any, and clears it.
func (s *Session) PopFlash() *Flash {
	f := s.data.Flash
	if f != nil {
		s.data.Flash = nil
		s.dirty = true
	}
	return f
}

// regenerate starts an empty session under a fresh id; the old id is removed
// on save.
func (s *Session) regenerate(newID string) {
	if !s.isNew && s.staleID == "" {
		s.staleID = s.id
	}
	s.data = Data{}
	s.id = newID
	s.isNew = true
	s.dirty = true
}

func (s *Session) destroy() {
	s.data = Data{}
	s.destroyed = true
}
