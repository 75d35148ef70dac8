package model

import "time"

type EscrowAccount struct {
	Owner     string    `gorm:"primaryKey" json:"owner"`
	Balance   uint64    `json:"balance"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (EscrowAccount) TableName() string {
	return "escrow_account"
}

type EscrowTransfer struct {
	Id        string    `gorm:"primaryKey" json:"id"`
	GameId    string    `gorm:"index" json:"gameId,omitempty"`
	From      string    `gorm:"column:from_account;index" json:"from"`
	To        string    `gorm:"column:to_account;index" json:"to"`
	Amount    uint64    `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

func (EscrowTransfer) TableName() string {
	return "escrow_transfer"
}
