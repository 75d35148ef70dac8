package model

type GameStatus string

const (
	GameWaitingForOpponent GameStatus = "WAITING_FOR_OPPONENT"
	GameWaitingForMoves    GameStatus = "WAITING_FOR_MOVES"
	GameWaitingForReveal   GameStatus = "WAITING_FOR_REVEAL"
	GameCompleted          GameStatus = "COMPLETED"
	GameDraw               GameStatus = "DRAW"
	GameExpired            GameStatus = "EXPIRED"
	GameCancelled          GameStatus = "CANCELLED"
)

const (
	EndResolved       = "resolved"
	EndTimeoutRefund  = "timeout_refund"
	EndTimeoutForfeit = "timeout_forfeit"
	EndCancelled      = "cancelled"
)

func (s GameStatus) Terminal() bool {
	switch s {
	case GameCompleted, GameDraw, GameExpired, GameCancelled:
		return true
	}
	return false
}

// Rank orders statuses along the only direction a game may move.
// All terminal statuses share the highest rank.
func (s GameStatus) Rank() int {
	switch s {
	case GameWaitingForOpponent:
		return 0
	case GameWaitingForMoves:
		return 1
	case GameWaitingForReveal:
		return 2
	case GameCompleted, GameDraw, GameExpired, GameCancelled:
		return 3
	}
	return -1
}

// Open lists the statuses a game can still progress from.
func OpenStatuses() []GameStatus {
	return []GameStatus{GameWaitingForOpponent, GameWaitingForMoves, GameWaitingForReveal}
}
