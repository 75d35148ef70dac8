package game

import (
	"encoding/hex"
	"time"

	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/morra"
)

type MoveView struct {
	Card       uint8 `json:"card"`
	Prediction uint8 `json:"prediction"`
}

type GameResponse struct {
	model.Game
	CreatorCommitment  string     `json:"creatorCommitment,omitempty"`
	OpponentCommitment string     `json:"opponentCommitment,omitempty"`
	CreatorRevealed    bool       `json:"creatorRevealed"`
	OpponentRevealed   bool       `json:"opponentRevealed"`
	CreatorMove        *MoveView  `json:"creatorMove,omitempty"`
	OpponentMove       *MoveView  `json:"opponentMove,omitempty"`
	AuditRoot          string     `json:"auditRoot,omitempty"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
}

type AuditResponse struct {
	Root    string             `json:"root"`
	Actions []model.GameAction `json:"actions"`
}

// newGameResponse renders a game. Moves stay hidden until the game is over
// so a late revealer learns nothing from the other party's reveal.
func newGameResponse(g model.Game, policy morra.Policy) GameResponse {
	res := GameResponse{
		Game:               g,
		CreatorCommitment:  hex.EncodeToString(g.CreatorCommitment),
		OpponentCommitment: hex.EncodeToString(g.OpponentCommitment),
		CreatorRevealed:    g.CreatorCard != nil,
		OpponentRevealed:   g.OpponentCard != nil,
		AuditRoot:          hex.EncodeToString(g.AuditRoot),
	}

	if g.Status.Terminal() {
		res.CreatorMove = moveView(g.CreatorCard, g.CreatorPrediction)
		res.OpponentMove = moveView(g.OpponentCard, g.OpponentPrediction)
	} else if policy.InactivityWindow > 0 {
		expiresAt := g.LastActionAt.Add(policy.InactivityWindow)
		res.ExpiresAt = &expiresAt
	}
	return res
}

func moveView(card, prediction *uint8) *MoveView {
	if card == nil || prediction == nil {
		return nil
	}
	return &MoveView{Card: *card, Prediction: *prediction}
}
