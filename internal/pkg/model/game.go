package model

import (
	"time"
)

type Game struct {
	Id                 string     `gorm:"primaryKey" json:"id"`
	Creator            string     `gorm:"index" json:"creator"`
	Opponent           *string    `gorm:"index" json:"opponent,omitempty"`
	BetAmount          uint64     `json:"betAmount"`
	Status             GameStatus `gorm:"index" json:"status"`
	CommitmentScheme   string     `json:"commitmentScheme"`
	CreatorCommitment  []byte     `json:"-"`
	OpponentCommitment []byte     `json:"-"`
	CreatorCard        *uint8     `json:"-"`
	CreatorPrediction  *uint8     `json:"-"`
	OpponentCard       *uint8     `json:"-"`
	OpponentPrediction *uint8     `json:"-"`
	Winner             *string    `json:"winner,omitempty"`
	Settled            bool       `json:"settled"`
	SettledAt          *time.Time `json:"settledAt,omitempty"`
	EndReason          string     `json:"endReason,omitempty"`
	AuditRoot          []byte     `json:"-"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastActionAt       time.Time  `json:"lastActionAt"`
}

func (Game) TableName() string {
	return "game"
}

// Clone returns a deep copy, so that mutating the copy never touches the
// pointers or slices of the original record.
func (g Game) Clone() Game {
	c := g
	c.Opponent = cloneString(g.Opponent)
	c.Winner = cloneString(g.Winner)
	c.CreatorCommitment = cloneBytes(g.CreatorCommitment)
	c.OpponentCommitment = cloneBytes(g.OpponentCommitment)
	c.CreatorCard = cloneUint8(g.CreatorCard)
	c.CreatorPrediction = cloneUint8(g.CreatorPrediction)
	c.OpponentCard = cloneUint8(g.OpponentCard)
	c.OpponentPrediction = cloneUint8(g.OpponentPrediction)
	c.AuditRoot = cloneBytes(g.AuditRoot)
	if g.SettledAt != nil {
		t := *g.SettledAt
		c.SettledAt = &t
	}
	return c
}

func (g *Game) IsParty(party string) bool {
	return party == g.Creator || (g.Opponent != nil && *g.Opponent == party)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUint8(u *uint8) *uint8 {
	if u == nil {
		return nil
	}
	v := *u
	return &v
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
