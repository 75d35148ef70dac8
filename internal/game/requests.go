package game

type CreateGameRequest struct {
	BetAmount uint64 `json:"betAmount"`
}

type JoinGameRequest struct {
	BetAmount uint64 `json:"betAmount"`
}

type CommitmentRequest struct {
	Commitment string `json:"commitment" binding:"required"`
}

type RevealRequest struct {
	Card       uint8  `json:"card"`
	Prediction uint8  `json:"prediction"`
	Secret     string `json:"secret" binding:"required"`
}
