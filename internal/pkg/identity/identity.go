package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingToken  = errors.New("missing identity token")
	ErrInvalidToken  = errors.New("invalid identity token")
	ErrReservedParty = errors.New("party id is reserved")
)

// Party is an authenticated caller.
type Party struct {
	Id    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Verifier turns a bearer token into the party presenting it.
type Verifier interface {
	Verify(ctx context.Context, token string) (Party, error)
}

const maxPartyIdLength = 128

// CheckPartyId rejects ids that could collide with ledger-owned accounts.
// Those always contain a colon or equal the deposit source.
func CheckPartyId(id string) error {
	if id == "" || len(id) > maxPartyIdLength {
		return ErrInvalidToken
	}
	if strings.ContainsAny(id, ": \t\r\n") || id == "external" {
		return ErrReservedParty
	}
	return nil
}
