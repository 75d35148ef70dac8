package model

import "time"

type GameAction struct {
	GameId     string     `gorm:"primaryKey" json:"gameId"`
	Seq        uint64     `gorm:"primaryKey;autoIncrement:false" json:"seq"`
	Actor      string     `json:"actor"`
	Action     string     `json:"action"`
	PrevStatus GameStatus `json:"prevStatus,omitempty"`
	Status     GameStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (GameAction) TableName() string {
	return "game_action"
}

// Tables lists every persisted model, in migration order.
func Tables() []any {
	return []any{&Game{}, &GameAction{}, &EscrowAccount{}, &EscrowTransfer{}}
}
