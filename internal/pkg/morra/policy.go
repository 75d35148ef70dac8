package morra

import (
	"fmt"
	"strings"
	"time"

	"github.com/kollektive-hackathon/morra-backend/internal/pkg/commitment"
)

const (
	MinCard       uint8 = 1
	MaxCard       uint8 = 5
	MinPrediction uint8 = 2
	MaxPrediction uint8 = 10
)

const (
	DefaultMinBet uint64 = 1
	DefaultMaxBet uint64 = 10_000_000_000
)

type TieBreak string

const (
	// TieBreakHigherCard awards the game to the strictly higher card when both
	// predictions are right. Equal cards still draw.
	TieBreakHigherCard TieBreak = "higher_card"
	TieBreakDraw       TieBreak = "draw"
)

func ParseTieBreak(value string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(value))) {
	case "", TieBreakHigherCard:
		return TieBreakHigherCard, nil
	case TieBreakDraw:
		return TieBreakDraw, nil
	}
	return "", fmt.Errorf("unknown tie-break rule %q", value)
}

type Policy struct {
	MinBet   uint64
	MaxBet   uint64
	TieBreak TieBreak
	// InactivityWindow is how long a game may sit without any action before
	// a party can expire it. Zero disables expiry.
	InactivityWindow time.Duration
	// AutoSettle pays out in the same step as the final reveal. Otherwise a
	// finished game waits for an explicit settle.
	AutoSettle bool
	Scheme     commitment.Scheme
}

func DefaultPolicy() Policy {
	return Policy{
		MinBet:           DefaultMinBet,
		MaxBet:           DefaultMaxBet,
		TieBreak:         TieBreakHigherCard,
		InactivityWindow: 24 * time.Hour,
		AutoSettle:       true,
		Scheme:           commitment.SchemeSHA256,
	}
}

func (p Policy) Validate() error {
	if p.MinBet == 0 {
		return fmt.Errorf("minimum bet must be positive")
	}
	if p.MaxBet < p.MinBet {
		return fmt.Errorf("maximum bet %d is below minimum bet %d", p.MaxBet, p.MinBet)
	}
	if _, err := ParseTieBreak(string(p.TieBreak)); err != nil {
		return err
	}
	if p.InactivityWindow < 0 {
		return fmt.Errorf("inactivity window must not be negative")
	}
	if _, err := commitment.ParseScheme(string(p.Scheme)); err != nil {
		return err
	}
	return nil
}

func (p Policy) validBet(bet uint64) bool {
	return bet >= p.MinBet && bet <= p.MaxBet
}

func validMove(card, prediction uint8) error {
	if card < MinCard || card > MaxCard {
		return ErrInvalidCard
	}
	if prediction < MinPrediction || prediction > MaxPrediction {
		return ErrInvalidPrediction
	}
	return nil
}
