package model

import "time"

// Credential is a bearer token together with its local expiry.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Present reports whether a token has been issued.
func (c Credential) Present() bool {
	return c.Token != ""
}

// Expired reports whether the credential is no longer usable at now.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Contract is one tradable futures contract returned by a search.
type Contract struct {
	ID          string
	Name        string
	Description string
	TickSize    float64
	TickValue   float64
	Active      bool
	SymbolID    string
}
