package wallet

import (
	"context"
	"errors"

	gcppubsub "cloud.google.com/go/pubsub"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/escrow"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/utils"
	"github.com/rs/zerolog/log"
)

// DepositMessage is what the payment side publishes once funds arrived.
type DepositMessage struct {
	Party     string `json:"party"`
	Amount    uint64 `json:"amount"`
	Reference string `json:"reference"`
}

func (s *walletService) handleDepositMessage(ctx context.Context, message *gcppubsub.Message) {
	if s.processDeposit(ctx, message.Data) {
		message.Ack()
		return
	}
	message.Nack()
}

// processDeposit reports whether the message is done with. Malformed and
// replayed messages are done; storage failures are retried.
func (s *walletService) processDeposit(ctx context.Context, data []byte) bool {
	log.Info().Msg("Received message payload " + string(data))
	payload, err := utils.JsonDecodeByteStream[DepositMessage](data)
	if err != nil {
		log.Warn().Err(err).Msg("Error while parsing DepositMessage")
		return true
	}
	if payload.Reference == "" {
		log.Warn().Str("party", payload.Party).Msg("Dropping deposit without reference")
		return true
	}

	err = s.deposit(ctx, payload.Party, payload.Amount, payload.Reference)
	switch {
	case err == nil:
		return true
	case errors.Is(err, escrow.ErrDuplicateTransfer):
		log.Info().Str("reference", payload.Reference).Msg("Deposit already credited")
		return true
	case errors.Is(err, ErrInvalidDeposit), errors.Is(err, escrow.ErrInvalidTransfer):
		log.Warn().Err(err).Str("reference", payload.Reference).Msg("Dropping invalid deposit")
		return true
	}
	log.Warn().Err(err).Str("reference", payload.Reference).Msg("Error while handling DepositMessage")
	return false
}
