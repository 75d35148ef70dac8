package audit

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actions() []model.GameAction {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []model.GameAction{
		{GameId: "g1", Seq: 1, Actor: "alice", Action: "create", Status: model.GameWaitingForOpponent, CreatedAt: at},
		{GameId: "g1", Seq: 2, Actor: "bob", Action: "join", PrevStatus: model.GameWaitingForOpponent, Status: model.GameWaitingForMoves, CreatedAt: at.Add(time.Second)},
		{GameId: "g1", Seq: 3, Actor: "alice", Action: "commit", PrevStatus: model.GameWaitingForMoves, Status: model.GameWaitingForMoves, CreatedAt: at.Add(2 * time.Second)},
	}
}

func TestRootIsDeterministic(t *testing.T) {
	a, err := Root(actions())
	require.NoError(t, err)
	b, err := Root(actions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestRootChangesWithAnyAction(t *testing.T) {
	original, err := Root(actions())
	require.NoError(t, err)

	tampered := actions()
	tampered[1].Actor = "mallory"
	changed, err := Root(tampered)
	require.NoError(t, err)
	assert.NotEqual(t, original, changed)

	extended := append(actions(), model.GameAction{GameId: "g1", Seq: 4, Actor: "bob", Action: "commit"})
	longer, err := Root(extended)
	require.NoError(t, err)
	assert.NotEqual(t, original, longer)
}

func TestProveAction(t *testing.T) {
	root, err := Root(actions())
	require.NoError(t, err)

	proof, err := ProveAction(actions(), 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), proof.Seq)
	assert.Equal(t, hex.EncodeToString(root), proof.Root)
	assert.Equal(t, hex.EncodeToString(CreateMerkleTreeNode(actions()[1])), proof.Leaf)
	assert.NotEmpty(t, proof.Hashes)

	_, err = ProveAction(actions(), 9)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestEmptyLog(t *testing.T) {
	_, err := Root(nil)
	assert.ErrorIs(t, err, ErrEmptyLog)
}
