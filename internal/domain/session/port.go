package session

import "context"

// Store port (persistence of the single active session)
type Store interface {
	Save(s Session) error
	// Load returns the stored session, or ok=false when none is present.
	Load() (Session, bool, error)
	// Clear removes the stored session. Idempotent.
	Clear() error
}

// Authenticator port (credential issuance against the remote API)
type Authenticator interface {
	Register(ctx context.Context, username, password string) error
	// Login returns the bearer credential issued for the given account.
	Login(ctx context.Context, username, password string) (string, error)
}
