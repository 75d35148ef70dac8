package morra

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/commitment"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/escrow"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
)

// Machine drives games through their lifecycle. Every operation validates
// against a copy of the game, hands the resulting transfers to the ledger
// as one batch and writes the copy back only when the ledger accepted it.
// A failed operation leaves the game exactly as it was.
type Machine struct {
	policy Policy
	clock  quartz.Clock
	ledger escrow.Ledger
}

func NewMachine(policy Policy, clock quartz.Clock, ledger escrow.Ledger) *Machine {
	return &Machine{policy: policy, clock: clock, ledger: ledger}
}

// WithLedger returns a machine sharing the policy and clock but moving funds
// through another ledger, typically one bound to a database transaction.
func (m *Machine) WithLedger(ledger escrow.Ledger) *Machine {
	return &Machine{policy: m.policy, clock: m.clock, ledger: ledger}
}

func (m *Machine) Policy() Policy {
	return m.policy
}

func (m *Machine) Create(ctx context.Context, id string, creator string, bet uint64) (*model.Game, error) {
	if creator == "" {
		return nil, ErrUnknownPlayer
	}
	if !m.policy.validBet(bet) {
		return nil, fmt.Errorf("%w: %d is outside [%d, %d]", ErrInvalidBetAmount, bet, m.policy.MinBet, m.policy.MaxBet)
	}

	now := m.clock.Now().UTC()
	g := model.Game{
		Id:               id,
		Creator:          creator,
		BetAmount:        bet,
		Status:           model.GameWaitingForOpponent,
		CommitmentScheme: string(m.policy.Scheme),
		CreatedAt:        now,
		LastActionAt:     now,
	}

	if err := m.ledger.Apply(ctx, stake(&g, creator)); err != nil {
		return nil, err
	}
	return &g, nil
}

func (m *Machine) Join(ctx context.Context, g *model.Game, opponent string, bet uint64) error {
	if g.Status != model.GameWaitingForOpponent {
		return ErrGameNotAvailable
	}
	if opponent == "" {
		return ErrUnknownPlayer
	}
	if opponent == g.Creator {
		return ErrCannotJoinOwnGame
	}
	if bet != g.BetAmount {
		return fmt.Errorf("%w: game requires %d", ErrInvalidBetAmount, g.BetAmount)
	}

	next := m.touch(g)
	next.Opponent = &opponent
	next.Status = model.GameWaitingForMoves

	return m.commit(ctx, g, next, stake(g, opponent))
}

func (m *Machine) SubmitCommitment(ctx context.Context, g *model.Game, caller string, hash []byte) error {
	if g.Status != model.GameWaitingForMoves {
		return ErrGameNotInProgress
	}

	next := m.touch(g)
	s, err := seatOf(&next, caller)
	if err != nil {
		return err
	}
	if len(hash) != commitment.HashLength {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedCommitment, commitment.HashLength, len(hash))
	}
	if *s.commitment != nil {
		return ErrCommitmentAlreadySet
	}

	*s.commitment = append([]byte{}, hash...)
	if next.CreatorCommitment != nil && next.OpponentCommitment != nil {
		next.Status = model.GameWaitingForReveal
	}

	return m.commit(ctx, g, next)
}

func (m *Machine) Reveal(ctx context.Context, g *model.Game, caller string, card, prediction uint8, secret commitment.Secret) error {
	if g.Status != model.GameWaitingForReveal {
		return ErrGameNotInRevealPhase
	}

	next := m.touch(g)
	s, err := seatOf(&next, caller)
	if err != nil {
		return err
	}
	if s.revealed() {
		return ErrAlreadyRevealed
	}
	if err := validMove(card, prediction); err != nil {
		return err
	}

	stored, err := commitment.HashFromBytes(*s.commitment)
	if err != nil {
		return fmt.Errorf("%w: stored commitment: %v", ErrInvalidCommitment, err)
	}
	ok, err := commitment.Verify(commitment.Scheme(g.CommitmentScheme), stored, card, prediction, secret)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCommitment
	}

	*s.card = &card
	*s.prediction = &prediction

	creator, opponent := seats(&next)
	if !creator.revealed() || !opponent.revealed() {
		return m.commit(ctx, g, next)
	}

	outcome := Resolve(m.policy.TieBreak, creator.move(), opponent.move())
	switch outcome {
	case CreatorWins:
		winner := next.Creator
		next.Winner = &winner
		next.Status = model.GameCompleted
	case OpponentWins:
		winner := *next.Opponent
		next.Winner = &winner
		next.Status = model.GameCompleted
	default:
		next.Status = model.GameDraw
	}
	next.EndReason = model.EndResolved

	if !m.policy.AutoSettle {
		return m.commit(ctx, g, next)
	}
	transfers := m.settle(&next)
	return m.commit(ctx, g, next, transfers...)
}

// Settle pays out a finished game that has not been paid yet.
func (m *Machine) Settle(ctx context.Context, g *model.Game) error {
	if !g.Status.Terminal() {
		return ErrGameNotFinished
	}
	if g.Settled {
		return ErrAlreadySettled
	}

	next := m.touch(g)
	transfers := m.settle(&next)
	return m.commit(ctx, g, next, transfers...)
}

// Expire closes a game nobody has acted on for the policy's inactivity
// window. A party who revealed while the other did not takes the pot;
// every other case refunds whatever was staked.
func (m *Machine) Expire(ctx context.Context, g *model.Game, caller string) error {
	if g.Status.Terminal() {
		return ErrGameFinished
	}
	if !g.IsParty(caller) {
		return ErrUnknownPlayer
	}
	window := m.policy.InactivityWindow
	idle := m.clock.Now().Sub(g.LastActionAt)
	if window <= 0 || idle < window {
		return fmt.Errorf("%w: idle for %s", ErrNotExpired, idle.Truncate(time.Second))
	}

	next := m.touch(g)
	next.Status = model.GameExpired
	next.EndReason = model.EndTimeoutRefund

	if g.Status == model.GameWaitingForReveal {
		creator, opponent := seats(&next)
		switch {
		case creator.revealed() && !opponent.revealed():
			winner := next.Creator
			next.Winner = &winner
		case opponent.revealed() && !creator.revealed():
			winner := *next.Opponent
			next.Winner = &winner
		}
		if next.Winner != nil {
			next.Status = model.GameCompleted
			next.EndReason = model.EndTimeoutForfeit
		}
	}

	transfers := m.settle(&next)
	return m.commit(ctx, g, next, transfers...)
}

// Cancel lets the creator withdraw a game nobody has joined yet.
func (m *Machine) Cancel(ctx context.Context, g *model.Game, caller string) error {
	if g.Status != model.GameWaitingForOpponent {
		return ErrGameNotAvailable
	}
	if caller != g.Creator {
		return ErrNotCreator
	}

	next := m.touch(g)
	next.Status = model.GameCancelled
	next.EndReason = model.EndCancelled

	transfers := m.settle(&next)
	return m.commit(ctx, g, next, transfers...)
}

func (m *Machine) touch(g *model.Game) model.Game {
	next := g.Clone()
	next.LastActionAt = m.clock.Now().UTC()
	return next
}

func (m *Machine) commit(ctx context.Context, g *model.Game, next model.Game, transfers ...escrow.Transfer) error {
	if len(transfers) > 0 {
		if err := m.ledger.Apply(ctx, transfers...); err != nil {
			return err
		}
	}
	*g = next
	return nil
}

// settle marks next as paid and returns the transfers emptying its holding
// account.
func (m *Machine) settle(next *model.Game) []escrow.Transfer {
	now := m.clock.Now().UTC()
	next.Settled = true
	next.SettledAt = &now

	holding := escrow.HoldingAccount(next.Id)
	if next.Winner != nil {
		return []escrow.Transfer{{
			From:   holding,
			To:     *next.Winner,
			Amount: 2 * next.BetAmount,
			GameId: next.Id,
			Reason: escrow.ReasonPayout,
		}}
	}

	transfers := []escrow.Transfer{{
		From:   holding,
		To:     next.Creator,
		Amount: next.BetAmount,
		GameId: next.Id,
		Reason: escrow.ReasonRefund,
	}}
	if next.Opponent != nil {
		transfers = append(transfers, escrow.Transfer{
			From:   holding,
			To:     *next.Opponent,
			Amount: next.BetAmount,
			GameId: next.Id,
			Reason: escrow.ReasonRefund,
		})
	}
	return transfers
}

func stake(g *model.Game, party string) escrow.Transfer {
	return escrow.Transfer{
		From:   party,
		To:     escrow.HoldingAccount(g.Id),
		Amount: g.BetAmount,
		GameId: g.Id,
		Reason: escrow.ReasonStake,
	}
}
