package morra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		creator  Move
		opponent Move
		higher   Outcome
		draw     Outcome
	}{
		{"both right, creator holds higher card", Move{3, 5}, Move{2, 5}, CreatorWins, Draw},
		{"only creator right", Move{2, 5}, Move{3, 99}, CreatorWins, CreatorWins},
		{"only opponent right", Move{1, 7}, Move{4, 5}, OpponentWins, OpponentWins},
		{"both wrong", Move{1, 10}, Move{1, 10}, Draw, Draw},
		{"both right, cards differ", Move{4, 6}, Move{2, 6}, CreatorWins, Draw},
		{"both right, opponent holds higher card", Move{1, 6}, Move{5, 6}, OpponentWins, Draw},
		{"both right, equal cards", Move{3, 6}, Move{3, 6}, Draw, Draw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.higher, Resolve(TieBreakHigherCard, tt.creator, tt.opponent))
			assert.Equal(t, tt.draw, Resolve(TieBreakDraw, tt.creator, tt.opponent))
		})
	}
}

func TestResolveIsSymmetric(t *testing.T) {
	mirror := map[Outcome]Outcome{CreatorWins: OpponentWins, OpponentWins: CreatorWins, Draw: Draw}

	for c1 := MinCard; c1 <= MaxCard; c1++ {
		for c2 := MinCard; c2 <= MaxCard; c2++ {
			for p1 := MinPrediction; p1 <= MaxPrediction; p1++ {
				for p2 := MinPrediction; p2 <= MaxPrediction; p2++ {
					a, b := Move{c1, p1}, Move{c2, p2}
					for _, rule := range []TieBreak{TieBreakHigherCard, TieBreakDraw} {
						assert.Equal(t, mirror[Resolve(rule, a, b)], Resolve(rule, b, a))
					}
				}
			}
		}
	}
}

func TestParseTieBreak(t *testing.T) {
	rule, err := ParseTieBreak("")
	assert.NoError(t, err)
	assert.Equal(t, TieBreakHigherCard, rule)

	rule, err = ParseTieBreak("DRAW")
	assert.NoError(t, err)
	assert.Equal(t, TieBreakDraw, rule)

	_, err = ParseTieBreak("coin_flip")
	assert.Error(t, err)
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.MinBet = 0
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.MaxBet = p.MinBet - 1
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.Scheme = "md5"
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.InactivityWindow = -1
	assert.Error(t, p.Validate())
}
