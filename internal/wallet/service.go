package wallet

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kollektive-hackathon/morra-backend/internal/pkg/escrow"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/identity"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/ws"
	"github.com/rs/zerolog/log"
)

const (
	depositInvalid   = "error.wallet.deposit-invalid"
	depositDuplicate = "error.wallet.deposit-duplicate"
	balanceError     = "error.wallet.balance"
)

var ErrInvalidDeposit = errors.New("invalid deposit")

type Wallet struct {
	Party   string `json:"party"`
	Balance uint64 `json:"balance"`
}

type walletService struct {
	ledger *escrow.GormLedger
	hub    *ws.WebSocketNotificationHub
}

func NotificationTopic(party string) string {
	return "wallet/" + party
}

func (s *walletService) getWallet(ctx context.Context, party string) (*Wallet, *reject.ProblemWithTrace) {
	balance, err := s.ledger.Balance(ctx, party)
	if err != nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Cannot read balance").
				WithStatus(http.StatusInternalServerError).
				WithCode(balanceError).
				Build(),
			Cause: err,
		}
	}
	return &Wallet{Party: party, Balance: balance}, nil
}

// deposit credits party. With a reference the deposit is applied at most
// once, so redelivered messages and retried requests are harmless.
func (s *walletService) deposit(ctx context.Context, party string, amount uint64, reference string) error {
	if err := identity.CheckPartyId(party); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDeposit, err)
	}
	if amount == 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidDeposit)
	}

	var err error
	if reference == "" {
		err = s.ledger.Deposit(ctx, party, amount)
	} else {
		err = s.ledger.DepositOnce(ctx, party, amount, reference)
	}
	if err != nil {
		return err
	}

	log.Info().Str("party", party).Uint64("amount", amount).Str("reference", reference).Msg("Deposit credited")
	if s.hub != nil {
		if wallet, problem := s.getWallet(ctx, party); problem == nil {
			s.hub.Publish(NotificationTopic(party), map[string]any{
				"type":    "DEPOSIT",
				"payload": wallet,
			})
		}
	}
	return nil
}

func depositProblem(err error) *reject.ProblemWithTrace {
	switch {
	case errors.Is(err, ErrInvalidDeposit), errors.Is(err, escrow.ErrInvalidTransfer):
		return &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Invalid deposit").
				WithStatus(http.StatusBadRequest).
				WithCode(depositInvalid).
				WithDetail(err.Error()).
				Build(),
			Cause: err,
		}
	case errors.Is(err, escrow.ErrDuplicateTransfer):
		return &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Deposit already credited").
				WithStatus(http.StatusConflict).
				WithCode(depositDuplicate).
				Build(),
			Cause: err,
		}
	}
	return reject.Unexpected(err)
}
