package morra

type Outcome int

const (
	Draw Outcome = iota
	CreatorWins
	OpponentWins
)

func (o Outcome) String() string {
	switch o {
	case CreatorWins:
		return "creator"
	case OpponentWins:
		return "opponent"
	}
	return "draw"
}

type Move struct {
	Card       uint8
	Prediction uint8
}

// Resolve decides a round from both revealed moves. A prediction is right
// when it equals the sum of both cards.
func Resolve(rule TieBreak, creator, opponent Move) Outcome {
	total := int(creator.Card) + int(opponent.Card)
	creatorRight := int(creator.Prediction) == total
	opponentRight := int(opponent.Prediction) == total

	switch {
	case creatorRight && !opponentRight:
		return CreatorWins
	case opponentRight && !creatorRight:
		return OpponentWins
	case !creatorRight && !opponentRight:
		return Draw
	}

	if rule == TieBreakDraw {
		return Draw
	}
	switch {
	case creator.Card > opponent.Card:
		return CreatorWins
	case opponent.Card > creator.Card:
		return OpponentWins
	}
	return Draw
}
