package morra

import (
	"errors"
	"fmt"

	"github.com/kollektive-hackathon/morra-backend/internal/pkg/escrow"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindProtocol
	KindCrypto
	KindEscrow
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindProtocol:
		return "protocol"
	case KindCrypto:
		return "crypto"
	case KindEscrow:
		return "escrow"
	}
	return "unknown"
}

var (
	ErrInvalidBetAmount    = errors.New("invalid bet amount")
	ErrCannotJoinOwnGame   = errors.New("cannot join own game")
	ErrUnknownPlayer       = errors.New("caller is not a party of this game")
	ErrNotCreator          = errors.New("only the creator may do this")
	ErrInvalidMove         = errors.New("invalid move")
	ErrInvalidCard         = fmt.Errorf("%w: card must be between %d and %d", ErrInvalidMove, MinCard, MaxCard)
	ErrInvalidPrediction   = fmt.Errorf("%w: prediction must be between %d and %d", ErrInvalidMove, MinPrediction, MaxPrediction)
	ErrMalformedCommitment = errors.New("malformed commitment")
	ErrMalformedSecret     = errors.New("malformed secret")

	ErrInvalidState         = errors.New("operation not allowed in current game status")
	ErrGameNotAvailable     = fmt.Errorf("%w: game is not waiting for an opponent", ErrInvalidState)
	ErrGameNotInProgress    = fmt.Errorf("%w: game is not accepting commitments", ErrInvalidState)
	ErrGameNotInRevealPhase = fmt.Errorf("%w: game is not in the reveal phase", ErrInvalidState)
	ErrGameNotFinished      = fmt.Errorf("%w: game has not finished", ErrInvalidState)
	ErrGameFinished         = fmt.Errorf("%w: game has already finished", ErrInvalidState)
	ErrCommitmentAlreadySet = errors.New("commitment already set")
	ErrAlreadyRevealed      = errors.New("move already revealed")
	ErrAlreadySettled       = errors.New("game already settled")
	ErrNotExpired           = errors.New("game has not been inactive long enough")

	ErrInvalidCommitment = errors.New("revealed move does not match commitment")

	ErrInsufficientFunds = escrow.ErrInsufficientFunds
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidBetAmount, KindValidation},
	{ErrCannotJoinOwnGame, KindValidation},
	{ErrUnknownPlayer, KindValidation},
	{ErrNotCreator, KindValidation},
	{ErrInvalidMove, KindValidation},
	{ErrMalformedCommitment, KindValidation},
	{ErrMalformedSecret, KindValidation},
	{ErrInvalidState, KindProtocol},
	{ErrCommitmentAlreadySet, KindProtocol},
	{ErrAlreadyRevealed, KindProtocol},
	{ErrAlreadySettled, KindProtocol},
	{ErrNotExpired, KindProtocol},
	{ErrInvalidCommitment, KindCrypto},
	{escrow.ErrInsufficientFunds, KindEscrow},
	{escrow.ErrInvalidTransfer, KindEscrow},
	{escrow.ErrDuplicateTransfer, KindEscrow},
}

// KindOf classifies an error returned by the machine.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
