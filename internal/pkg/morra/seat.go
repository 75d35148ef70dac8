package morra

import "github.com/kollektive-hackathon/morra-backend/internal/pkg/model"

// seat points at the move slots one party owns in a game.
type seat struct {
	commitment *[]byte
	card       **uint8
	prediction **uint8
}

func seatOf(g *model.Game, party string) (seat, error) {
	creator, opponent := seats(g)
	switch {
	case party != "" && party == g.Creator:
		return creator, nil
	case party != "" && g.Opponent != nil && party == *g.Opponent:
		return opponent, nil
	}
	return seat{}, ErrUnknownPlayer
}

func seats(g *model.Game) (creator seat, opponent seat) {
	creator = seat{
		commitment: &g.CreatorCommitment,
		card:       &g.CreatorCard,
		prediction: &g.CreatorPrediction,
	}
	opponent = seat{
		commitment: &g.OpponentCommitment,
		card:       &g.OpponentCard,
		prediction: &g.OpponentPrediction,
	}
	return creator, opponent
}

func (s seat) revealed() bool {
	return *s.card != nil
}

func (s seat) move() Move {
	return Move{Card: **s.card, Prediction: **s.prediction}
}
