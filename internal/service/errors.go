package service

import "fmt"

// AuthError covers every authentication failure: missing or invalid
// tokens and credential mismatches on login.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// ValidationError rejects malformed or conflicting input, such as a
// signup with an email that is already taken.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DuplicateVoteError rejects a second vote by the same user on the
// same link.
type DuplicateVoteError struct {
	LinkID int64
}

func (e *DuplicateVoteError) Error() string {
	return fmt.Sprintf("Already voted for link: %d", e.LinkID)
}
