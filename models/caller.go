package models

import (
	"fmt"
)

// Caller describes who sent a request, as far as an upstream service can tell.
// The interface is sealed: the only implementations are VerifiedCaller and UnverifiedCaller.
type Caller interface {
	// Authoritative reports whether the identity was proven by a verified token.
	Authoritative() bool
	sealed()
}

// VerifiedCaller is an identity whose token signature and expiry were checked.
// Mutating ledger operations accept only this type.
type VerifiedCaller struct {
	ID    uint
	Email string
	Name  string
	Role  string
}

func (VerifiedCaller) Authoritative() bool { return true }
func (VerifiedCaller) sealed()             {}

// CanProvideServices reports whether the identity holds the helper capability
func (c VerifiedCaller) CanProvideServices() bool {
	return c.Role == RoleHelper
}

// DisplayName returns the name to use when a helper profile is provisioned for this caller
func (c VerifiedCaller) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("Helper #%d", c.ID)
}

// UnverifiedCaller holds best-effort fields decoded from a token without checking its
// signature. It is only good for log correlation and must never authorize anything.
type UnverifiedCaller struct {
	Subject string
	Email   string
	Name    string
}

func (UnverifiedCaller) Authoritative() bool { return false }
func (UnverifiedCaller) sealed()             {}
