package audit

import (
	"encoding/hex"
	"errors"
	"fmt"

	eth "github.com/ethereum/go-ethereum/crypto"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
	"github.com/rs/zerolog/log"
	"github.com/wealdtech/go-merkletree"
	keccak "github.com/wealdtech/go-merkletree/keccak256"
)

var (
	ErrEmptyLog      = errors.New("action log is empty")
	ErrUnknownAction = errors.New("no action with that sequence number")
)

type Proof struct {
	GameId string   `json:"gameId"`
	Seq    uint64   `json:"seq"`
	Leaf   string   `json:"leaf"`
	Hashes []string `json:"hashes"`
	Root   string   `json:"root"`
}

// CreateMerkleTreeNode hashes one action into a tree leaf.
// Format: GAME_ID|SEQ|ACTOR|ACTION|PREV_STATUS|STATUS|UNIX_MICRO
func CreateMerkleTreeNode(action model.GameAction) []byte {
	str := fmt.Sprintf("%s|%d|%s|%s|%s|%s|%d",
		action.GameId,
		action.Seq,
		action.Actor,
		action.Action,
		action.PrevStatus,
		action.Status,
		action.CreatedAt.UTC().UnixMicro())
	return eth.Keccak256([]byte(str))
}

func CreateMerkleTree(actions []model.GameAction) (*merkletree.MerkleTree, [][]byte, error) {
	if len(actions) == 0 {
		return nil, nil, ErrEmptyLog
	}

	treeData := make([][]byte, 0, len(actions))
	for _, action := range actions {
		treeData = append(treeData, CreateMerkleTreeNode(action))
	}

	mt, err := merkletree.NewUsing(treeData, keccak.New(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("Error while creating merkle tree")
		return nil, nil, err
	}
	return mt, treeData, nil
}

func Root(actions []model.GameAction) ([]byte, error) {
	mt, _, err := CreateMerkleTree(actions)
	if err != nil {
		return nil, err
	}
	return mt.Root(), nil
}

func ProveAction(actions []model.GameAction, seq uint64) (*Proof, error) {
	mt, treeData, err := CreateMerkleTree(actions)
	if err != nil {
		return nil, err
	}

	for i, action := range actions {
		if action.Seq != seq {
			continue
		}
		proof, err := mt.GenerateProof(treeData[i])
		if err != nil {
			return nil, err
		}

		hashes := make([]string, 0, len(proof.Hashes))
		for _, h := range proof.Hashes {
			hashes = append(hashes, hex.EncodeToString(h))
		}
		return &Proof{
			GameId: action.GameId,
			Seq:    seq,
			Leaf:   hex.EncodeToString(treeData[i]),
			Hashes: hashes,
			Root:   hex.EncodeToString(mt.Root()),
		}, nil
	}
	return nil, ErrUnknownAction
}
