package game

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/audit"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/commitment"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/escrow"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/morra"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/utils"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gameService struct {
	db       *gorm.DB
	machine  *morra.Machine
	ledger   *escrow.GormLedger
	notifier Notifier
}

type gameOperation func(m *morra.Machine, g *model.Game) error

func (gs *gameService) createGame(ctx context.Context, creator string, request CreateGameRequest) (*GameResponse, *reject.ProblemWithTrace) {
	var game *model.Game
	err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := gs.machine.WithLedger(gs.ledger.WithTx(tx))

		var err error
		game, err = m.Create(ctx, uuid.NewString(), creator, request.BetAmount)
		if err != nil {
			return err
		}
		if res := tx.Create(game); res.Error != nil {
			log.Warn().Err(res.Error).Msg("error persisting game to database")
			return res.Error
		}
		_, err = gs.appendAction(tx, game, creator, ActionCreate, "")
		return err
	})
	if err != nil {
		return nil, gameProblem(err)
	}

	log.Info().Str("gameId", game.Id).Str("party", creator).Uint64("bet", game.BetAmount).Msg("Game created")
	gs.notifier.Notify(ctx, newGameEvent(ActionCreate, creator, *game))

	res := newGameResponse(*game, gs.machine.Policy())
	return &res, nil
}

func (gs *gameService) joinGame(ctx context.Context, gameId string, opponent string, request JoinGameRequest) (*GameResponse, *reject.ProblemWithTrace) {
	return gs.apply(ctx, gameId, opponent, ActionJoin, func(m *morra.Machine, g *model.Game) error {
		return m.Join(ctx, g, opponent, request.BetAmount)
	})
}

func (gs *gameService) submitCommitment(ctx context.Context, gameId string, caller string, request CommitmentRequest) (*GameResponse, *reject.ProblemWithTrace) {
	hash, err := commitment.ParseHash(request.Commitment)
	if err != nil {
		return nil, gameProblem(fmt.Errorf("%w: %v", morra.ErrMalformedCommitment, err))
	}

	return gs.apply(ctx, gameId, caller, ActionCommit, func(m *morra.Machine, g *model.Game) error {
		return m.SubmitCommitment(ctx, g, caller, hash.Bytes())
	})
}

func (gs *gameService) reveal(ctx context.Context, gameId string, caller string, request RevealRequest) (*GameResponse, *reject.ProblemWithTrace) {
	secret, err := commitment.ParseSecret(request.Secret)
	if err != nil {
		return nil, gameProblem(fmt.Errorf("%w: %v", morra.ErrMalformedSecret, err))
	}

	return gs.apply(ctx, gameId, caller, ActionReveal, func(m *morra.Machine, g *model.Game) error {
		return m.Reveal(ctx, g, caller, request.Card, request.Prediction, secret)
	})
}

func (gs *gameService) claim(ctx context.Context, gameId string, caller string) (*GameResponse, *reject.ProblemWithTrace) {
	return gs.apply(ctx, gameId, caller, ActionSettle, func(m *morra.Machine, g *model.Game) error {
		if !g.IsParty(caller) {
			return morra.ErrUnknownPlayer
		}
		return m.Settle(ctx, g)
	})
}

func (gs *gameService) expire(ctx context.Context, gameId string, caller string) (*GameResponse, *reject.ProblemWithTrace) {
	return gs.apply(ctx, gameId, caller, ActionExpire, func(m *morra.Machine, g *model.Game) error {
		return m.Expire(ctx, g, caller)
	})
}

func (gs *gameService) cancel(ctx context.Context, gameId string, caller string) (*GameResponse, *reject.ProblemWithTrace) {
	return gs.apply(ctx, gameId, caller, ActionCancel, func(m *morra.Machine, g *model.Game) error {
		return m.Cancel(ctx, g, caller)
	})
}

// apply runs op against the locked game row. The game, its escrow movements
// and the action log entry commit together or not at all.
func (gs *gameService) apply(ctx context.Context, gameId string, actor string, action string, op gameOperation) (*GameResponse, *reject.ProblemWithTrace) {
	var game model.Game
	err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", gameId).
			Limit(1).
			Find(&game)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errGameNotFound
		}

		prevStatus := game.Status
		wasSettled := game.Settled
		if err := op(gs.machine.WithLedger(gs.ledger.WithTx(tx)), &game); err != nil {
			return err
		}

		actions, err := gs.appendAction(tx, &game, actor, action, prevStatus)
		if err != nil {
			return err
		}
		if game.Settled && !wasSettled {
			root, err := audit.Root(actions)
			if err != nil {
				return err
			}
			game.AuditRoot = root
		}

		if res := tx.Save(&game); res.Error != nil {
			log.Warn().Err(res.Error).Str("gameId", gameId).Msg("error persisting game to database")
			return res.Error
		}
		return nil
	})
	if err != nil {
		if morra.KindOf(err) != morra.KindUnknown {
			log.Info().Err(err).Str("gameId", gameId).Str("party", actor).Str("action", action).Msg("Game action rejected")
		}
		return nil, gameProblem(err)
	}

	log.Info().
		Str("gameId", game.Id).
		Str("party", actor).
		Str("action", action).
		Str("status", string(game.Status)).
		Msg("Game updated")
	gs.notifier.Notify(ctx, newGameEvent(action, actor, game))

	res := newGameResponse(game, gs.machine.Policy())
	return &res, nil
}

// appendAction records one log entry and returns the full log of the game.
func (gs *gameService) appendAction(tx *gorm.DB, g *model.Game, actor string, action string, prevStatus model.GameStatus) ([]model.GameAction, error) {
	actions := []model.GameAction{}
	if res := tx.Where("game_id = ?", g.Id).Order("seq").Find(&actions); res.Error != nil {
		return nil, res.Error
	}

	entry := model.GameAction{
		GameId:     g.Id,
		Seq:        uint64(len(actions)) + 1,
		Actor:      actor,
		Action:     action,
		PrevStatus: prevStatus,
		Status:     g.Status,
		CreatedAt:  g.LastActionAt,
	}
	if res := tx.Create(&entry); res.Error != nil {
		return nil, fmt.Errorf("recording game action: %w", res.Error)
	}
	return append(actions, entry), nil
}

func (gs *gameService) getGame(ctx context.Context, gameId string) (*GameResponse, *reject.ProblemWithTrace) {
	var game model.Game
	res := gs.db.WithContext(ctx).Where("id = ?", gameId).Limit(1).Find(&game)
	if res.Error != nil {
		return nil, databaseProblem(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, gameProblem(errGameNotFound)
	}

	response := newGameResponse(game, gs.machine.Policy())
	return &response, nil
}

type gameFilter struct {
	party    string
	mine     bool
	statuses []model.GameStatus
}

func (gs *gameService) getGames(ctx context.Context, page utils.PageRequest, filter gameFilter) ([]GameResponse, int64, *reject.ProblemWithTrace) {
	games := []model.Game{}
	gamesCount := int64(0)

	query := func() *gorm.DB {
		q := gs.db.WithContext(ctx).Model(&model.Game{}).Where("status IN ?", filter.statuses)
		if filter.mine {
			q = q.Where("(creator = ? OR opponent = ?)", filter.party, filter.party)
		}
		return q
	}

	if res := query().Count(&gamesCount); res.Error != nil {
		return nil, 0, databaseProblem(res.Error)
	}
	res := query().
		Order("created_at DESC").
		Limit(page.Size).
		Offset(page.Offset).
		Find(&games)
	if res.Error != nil {
		return nil, 0, databaseProblem(res.Error)
	}

	responses := make([]GameResponse, 0, len(games))
	for _, g := range games {
		responses = append(responses, newGameResponse(g, gs.machine.Policy()))
	}
	return responses, gamesCount, nil
}

func (gs *gameService) getTransfers(ctx context.Context, gameId string) ([]model.EscrowTransfer, *reject.ProblemWithTrace) {
	if _, problem := gs.getGame(ctx, gameId); problem != nil {
		return nil, problem
	}
	transfers, err := gs.ledger.History(ctx, gameId)
	if err != nil {
		return nil, databaseProblem(err)
	}
	return transfers, nil
}

func (gs *gameService) getActions(ctx context.Context, gameId string) ([]model.GameAction, *reject.ProblemWithTrace) {
	actions := []model.GameAction{}
	res := gs.db.WithContext(ctx).Where("game_id = ?", gameId).Order("seq").Find(&actions)
	if res.Error != nil {
		return nil, databaseProblem(res.Error)
	}
	if len(actions) == 0 {
		return nil, gameProblem(errGameNotFound)
	}
	return actions, nil
}

func (gs *gameService) getAudit(ctx context.Context, gameId string) (*AuditResponse, *reject.ProblemWithTrace) {
	actions, problem := gs.getActions(ctx, gameId)
	if problem != nil {
		return nil, problem
	}
	root, err := audit.Root(actions)
	if err != nil {
		return nil, reject.Unexpected(err)
	}
	return &AuditResponse{Root: hex.EncodeToString(root), Actions: actions}, nil
}

func (gs *gameService) getAuditProof(ctx context.Context, gameId string, seq uint64) (*audit.Proof, *reject.ProblemWithTrace) {
	actions, problem := gs.getActions(ctx, gameId)
	if problem != nil {
		return nil, problem
	}
	proof, err := audit.ProveAction(actions, seq)
	if err != nil {
		if errors.Is(err, audit.ErrUnknownAction) {
			return nil, gameProblem(err)
		}
		return nil, reject.Unexpected(err)
	}
	return proof, nil
}
