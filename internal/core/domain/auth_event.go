package domain

import "time"

// AuthEventKind names the operation an audit event was recorded for.
type AuthEventKind string

const (
	AuthEventLogin    AuthEventKind = "login"
	AuthEventRegister AuthEventKind = "register"
	AuthEventRefresh  AuthEventKind = "refresh"
)

// AuthEvent is an entry of the authentication audit trail.
type AuthEvent struct {
	Kind       AuthEventKind
	UserID     string // empty when the account could not be identified
	Email      string
	Outcome    string // "success" or an ErrorKind label
	OccurredAt time.Time
}

// ShardKey returns the key used to keep events of one account ordered.
func (e AuthEvent) ShardKey() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.Email
}
