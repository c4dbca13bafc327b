package model

import "time"

// Session is the authenticated caller. A nil *Session means anonymous.
type Session struct {
	ID        string // token id, used for logout
	UserID    string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Session) Authenticated() bool { return s != nil && s.UserID != "" }

func (s *Session) Can(c Capability) bool {
	return s.Authenticated() && Can(s.Role, c)
}

// MenuItem is one entry of the navigation menu.
type MenuItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}
