package game

import (
	"errors"
	"net/http"

	"github.com/kollektive-hackathon/morra-backend/internal/pkg/audit"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/escrow"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/morra"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/reject"
)

const (
	databaseError = "error.data.access"
)

var errGameNotFound = errors.New("game not found")

var problemCodes = []struct {
	err  error
	code string
}{
	{morra.ErrInvalidBetAmount, "error.game.invalid-bet-amount"},
	{morra.ErrCannotJoinOwnGame, "error.game.cannot-join-own-game"},
	{morra.ErrUnknownPlayer, "error.game.unknown-player"},
	{morra.ErrNotCreator, "error.game.not-creator"},
	{morra.ErrInvalidMove, "error.game.invalid-move"},
	{morra.ErrMalformedCommitment, "error.game.malformed-commitment"},
	{morra.ErrMalformedSecret, "error.game.malformed-secret"},
	{morra.ErrInvalidState, "error.game.invalid-state"},
	{morra.ErrCommitmentAlreadySet, "error.game.commitment-already-set"},
	{morra.ErrAlreadyRevealed, "error.game.already-revealed"},
	{morra.ErrAlreadySettled, "error.game.already-settled"},
	{morra.ErrNotExpired, "error.game.not-expired"},
	{morra.ErrInvalidCommitment, "error.game.invalid-commitment"},
	{escrow.ErrInsufficientFunds, "error.escrow.insufficient-funds"},
}

func gameProblem(err error) *reject.ProblemWithTrace {
	if errors.Is(err, errGameNotFound) || errors.Is(err, audit.ErrUnknownAction) {
		return &reject.ProblemWithTrace{Problem: reject.NotFoundProblem(), Cause: err}
	}

	var status int
	var title string
	switch morra.KindOf(err) {
	case morra.KindValidation:
		status, title = http.StatusBadRequest, "Invalid game action"
		if errors.Is(err, morra.ErrUnknownPlayer) || errors.Is(err, morra.ErrNotCreator) {
			status = http.StatusForbidden
		}
	case morra.KindProtocol:
		status, title = http.StatusConflict, "Action not allowed at this point of the game"
	case morra.KindCrypto:
		status, title = http.StatusUnprocessableEntity, "Revealed move does not match commitment"
	case morra.KindEscrow:
		if !errors.Is(err, escrow.ErrInsufficientFunds) {
			return reject.Unexpected(err)
		}
		status, title = http.StatusPaymentRequired, "Insufficient funds"
	default:
		return reject.Unexpected(err)
	}

	problem := reject.NewProblem().
		WithTitle(title).
		WithStatus(status).
		WithDetail(err.Error())
	for _, pc := range problemCodes {
		if errors.Is(err, pc.err) {
			problem.WithCode(pc.code)
			break
		}
	}
	return &reject.ProblemWithTrace{Problem: problem.Build(), Cause: err}
}

func databaseProblem(err error) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Trouble fetching data from database").
			WithStatus(http.StatusInternalServerError).
			WithCode(databaseError).
			Build(),
		Cause: err,
	}
}
