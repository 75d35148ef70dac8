package escrow

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type Reason string

const (
	ReasonStake   Reason = "stake"
	ReasonPayout  Reason = "payout"
	ReasonRefund  Reason = "refund"
	ReasonDeposit Reason = "deposit"
)

// DepositSource is the external account every deposit is credited from.
// It has no balance of its own.
const DepositSource = "external"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransfer   = errors.New("invalid transfer")
	ErrDuplicateTransfer = errors.New("transfer already recorded")
)

type Transfer struct {
	From   string
	To     string
	Amount uint64
	GameId string
	Reason Reason
	// Ref, when set, identifies the transfer. A second transfer with the
	// same Ref is rejected with ErrDuplicateTransfer.
	Ref string
}

// Ledger moves value between accounts. Apply commits every transfer of the
// batch or none of them.
type Ledger interface {
	Apply(ctx context.Context, transfers ...Transfer) error
}

type BalanceReader interface {
	Balance(ctx context.Context, owner string) (uint64, error)
}

// HoldingAccount is the account holding the stakes of one game.
func HoldingAccount(gameId string) string {
	return "game:" + gameId
}

// DepositRef namespaces an external deposit reference as a transfer ref.
func DepositRef(reference string) string {
	return "deposit:" + reference
}

func validate(t Transfer) error {
	if t.From == "" || t.To == "" {
		return fmt.Errorf("%w: missing account", ErrInvalidTransfer)
	}
	if t.From == t.To {
		return fmt.Errorf("%w: %s transfers to itself", ErrInvalidTransfer, t.From)
	}
	if t.Amount == 0 {
		return fmt.Errorf("%w: zero amount", ErrInvalidTransfer)
	}
	return nil
}

// move applies one transfer to an in-memory balance view.
func move(balances map[string]uint64, t Transfer) error {
	if t.From != DepositSource {
		if balances[t.From] < t.Amount {
			return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, t.From, balances[t.From], t.Amount)
		}
		balances[t.From] -= t.Amount
	}
	if balances[t.To] > math.MaxUint64-t.Amount {
		return fmt.Errorf("%w: balance overflow for %s", ErrInvalidTransfer, t.To)
	}
	balances[t.To] += t.Amount
	return nil
}
