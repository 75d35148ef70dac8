package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

const emailClaimKey = "email"

type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initialises the Firebase SDK from the ambient Google
// credentials.
func NewFirebaseVerifier(ctx context.Context) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Party, error) {
	if token == "" {
		return Party{}, ErrMissingToken
	}
	idToken, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Party{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return partyFromToken(idToken)
}

func partyFromToken(token *auth.Token) (Party, error) {
	if err := CheckPartyId(token.UID); err != nil {
		return Party{}, err
	}
	party := Party{Id: token.UID}
	if email, ok := token.Claims[emailClaimKey].(string); ok {
		party.Email = email
	}
	return party, nil
}
