package escrow

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/dbtest"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type depositLedger interface {
	Ledger
	BalanceReader
	Deposit(ctx context.Context, owner string, amount uint64) error
	DepositOnce(ctx context.Context, owner string, amount uint64, ref string) error
}

func ledgers(t *testing.T) map[string]depositLedger {
	return map[string]depositLedger{
		"memory": NewMemoryLedger(),
		"gorm":   NewGormLedger(dbtest.Open(t), quartz.NewMock(t)),
	}
}

func balance(t *testing.T, l BalanceReader, owner string) uint64 {
	t.Helper()
	b, err := l.Balance(context.Background(), owner)
	require.NoError(t, err)
	return b
}

func TestApplyMovesValue(t *testing.T) {
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, l.Deposit(ctx, "alice", 150))

			err := l.Apply(ctx, Transfer{From: "alice", To: HoldingAccount("g1"), Amount: 100, GameId: "g1", Reason: ReasonStake})
			require.NoError(t, err)

			assert.Equal(t, uint64(50), balance(t, l, "alice"))
			assert.Equal(t, uint64(100), balance(t, l, HoldingAccount("g1")))
			assert.Equal(t, uint64(0), balance(t, l, "nobody"))
		})
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, l.Deposit(ctx, "alice", 100))
			require.NoError(t, l.Deposit(ctx, "bob", 10))

			err := l.Apply(ctx,
				Transfer{From: "alice", To: "pot", Amount: 100, Reason: ReasonStake},
				Transfer{From: "bob", To: "pot", Amount: 100, Reason: ReasonStake},
			)
			assert.ErrorIs(t, err, ErrInsufficientFunds)

			assert.Equal(t, uint64(100), balance(t, l, "alice"))
			assert.Equal(t, uint64(10), balance(t, l, "bob"))
			assert.Equal(t, uint64(0), balance(t, l, "pot"))
		})
	}
}

func TestApplyChainsWithinBatch(t *testing.T) {
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, l.Deposit(ctx, "alice", 40))

			err := l.Apply(ctx,
				Transfer{From: "alice", To: "pot", Amount: 40},
				Transfer{From: "pot", To: "bob", Amount: 40},
			)
			require.NoError(t, err)
			assert.Equal(t, uint64(0), balance(t, l, "pot"))
			assert.Equal(t, uint64(40), balance(t, l, "bob"))
		})
	}
}

func TestApplyRejectsInvalidTransfers(t *testing.T) {
	cases := map[string]Transfer{
		"zero amount":  {From: "a", To: "b"},
		"self":         {From: "a", To: "a", Amount: 1},
		"missing from": {To: "b", Amount: 1},
	}

	for name, l := range ledgers(t) {
		for caseName, tr := range cases {
			t.Run(name+"/"+caseName, func(t *testing.T) {
				assert.ErrorIs(t, l.Apply(context.Background(), tr), ErrInvalidTransfer)
			})
		}
	}
}

func TestGormLedgerRecordsHistory(t *testing.T) {
	ctx := context.Background()
	l := NewGormLedger(dbtest.Open(t), quartz.NewMock(t))
	require.NoError(t, l.Deposit(ctx, "alice", 10))
	require.NoError(t, l.Apply(ctx, Transfer{From: "alice", To: HoldingAccount("g1"), Amount: 10, GameId: "g1", Reason: ReasonStake}))

	history, err := l.History(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "alice", history[0].From)
	assert.Equal(t, HoldingAccount("g1"), history[0].To)
	assert.Equal(t, string(ReasonStake), history[0].Reason)
	assert.NotEmpty(t, history[0].Id)
}

func TestMemoryLedgerSerialisesConcurrentTransfers(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	require.NoError(t, l.Deposit(ctx, "alice", 100))

	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0
	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Apply(ctx, Transfer{From: "alice", To: "bob", Amount: 1}); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, failures)
	assert.Equal(t, uint64(0), balance(t, l, "alice"))
	assert.Equal(t, uint64(100), balance(t, l, "bob"))
	assert.Len(t, l.Transfers(), 101)
}

func TestDepositOnceIgnoresReplays(t *testing.T) {
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, l.DepositOnce(ctx, "alice", 70, "bank-1"))

			err := l.DepositOnce(ctx, "alice", 70, "bank-1")
			assert.ErrorIs(t, err, ErrDuplicateTransfer)
			assert.Equal(t, uint64(70), balance(t, l, "alice"))

			require.NoError(t, l.DepositOnce(ctx, "alice", 5, "bank-2"))
			assert.Equal(t, uint64(75), balance(t, l, "alice"))
		})
	}
}

func TestFirstDepositsToNewAccountAllLand(t *testing.T) {
	databases := map[string]func(testing.TB) *gorm.DB{
		"sqlite":   dbtest.Open,
		"postgres": dbtest.OpenPostgres,
	}

	for name, open := range databases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := NewGormLedger(open(t), quartz.NewMock(t))
			owner := "dave-" + uuid.NewString()

			var wg sync.WaitGroup
			errs := make(chan error, 20)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					errs <- l.DepositOnce(ctx, owner, 5, fmt.Sprintf("%s-%d", owner, i))
				}(i)
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}
			assert.Equal(t, uint64(100), balance(t, l, owner))
		})
	}
}

func TestRejectedBatchOpensNoAccounts(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	l := NewGormLedger(db, quartz.NewMock(t))

	err := l.Apply(ctx, Transfer{From: "erin", To: "frank", Amount: 1})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	var count int64
	require.NoError(t, db.Model(&model.EscrowAccount{}).Count(&count).Error)
	assert.Zero(t, count)
}
