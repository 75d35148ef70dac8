package escrow

import (
	"context"
	"fmt"
	"sort"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedger keeps balances in the escrow_account table. When db is already
// a transaction the ledger joins it through a savepoint, so a failing batch
// never leaves partial balances behind and the caller's own writes roll back
// together with it.
type GormLedger struct {
	db    *gorm.DB
	clock quartz.Clock
}

func NewGormLedger(db *gorm.DB, clock quartz.Clock) *GormLedger {
	return &GormLedger{db: db, clock: clock}
}

// WithTx binds the ledger to an open transaction.
func (l *GormLedger) WithTx(tx *gorm.DB) *GormLedger {
	return &GormLedger{db: tx, clock: l.clock}
}

func (l *GormLedger) Apply(ctx context.Context, transfers ...Transfer) error {
	for _, t := range transfers {
		if err := validate(t); err != nil {
			return err
		}
	}
	if len(transfers) == 0 {
		return nil
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRefs(tx, transfers); err != nil {
			return err
		}
		owners := touchedOwners(transfers)

		// Accounts are locked in sorted order so concurrent batches touching
		// the same accounts cannot deadlock.
		balances := make(map[string]uint64, len(owners))
		for _, owner := range owners {
			account, err := lockAccount(tx, owner)
			if err != nil {
				return err
			}
			balances[owner] = account.Balance
		}

		for _, t := range transfers {
			if err := move(balances, t); err != nil {
				return err
			}
		}

		now := l.clock.Now().UTC()
		for _, owner := range owners {
			res := tx.Model(&model.EscrowAccount{}).
				Where("owner = ?", owner).
				Updates(map[string]any{"balance": balances[owner], "updated_at": now})
			if res.Error != nil {
				return fmt.Errorf("saving escrow account %s: %w", owner, res.Error)
			}
		}

		records := make([]model.EscrowTransfer, 0, len(transfers))
		for _, t := range transfers {
			id := t.Ref
			if id == "" {
				id = uuid.NewString()
			}
			records = append(records, model.EscrowTransfer{
				Id:        id,
				GameId:    t.GameId,
				From:      t.From,
				To:        t.To,
				Amount:    t.Amount,
				Reason:    string(t.Reason),
				CreatedAt: now,
			})
		}
		if res := tx.Create(&records); res.Error != nil {
			return fmt.Errorf("recording escrow transfers: %w", res.Error)
		}
		return nil
	})
}

func (l *GormLedger) Deposit(ctx context.Context, owner string, amount uint64) error {
	return l.Apply(ctx, Transfer{From: DepositSource, To: owner, Amount: amount, Reason: ReasonDeposit})
}

// DepositOnce credits owner unless a deposit with the same reference was
// already recorded.
func (l *GormLedger) DepositOnce(ctx context.Context, owner string, amount uint64, ref string) error {
	return l.Apply(ctx, Transfer{From: DepositSource, To: owner, Amount: amount, Reason: ReasonDeposit, Ref: DepositRef(ref)})
}

func (l *GormLedger) Balance(ctx context.Context, owner string) (uint64, error) {
	var account model.EscrowAccount
	res := l.db.WithContext(ctx).Where("owner = ?", owner).Limit(1).Find(&account)
	if res.Error != nil {
		return 0, res.Error
	}
	return account.Balance, nil
}

// History returns the transfers recorded for one game, oldest first.
func (l *GormLedger) History(ctx context.Context, gameId string) ([]model.EscrowTransfer, error) {
	transfers := []model.EscrowTransfer{}
	res := l.db.WithContext(ctx).
		Where("game_id = ?", gameId).
		Order("created_at").
		Find(&transfers)
	if res.Error != nil {
		return nil, res.Error
	}
	return transfers, nil
}

// lockAccount makes sure the account row exists before locking it. A row
// lock on a missing row locks nothing, so two first deposits to the same
// owner would otherwise both start from zero.
func lockAccount(tx *gorm.DB, owner string) (model.EscrowAccount, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.EscrowAccount{Owner: owner})
	if res.Error != nil {
		return model.EscrowAccount{}, fmt.Errorf("opening escrow account %s: %w", owner, res.Error)
	}

	var account model.EscrowAccount
	res = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ?", owner).
		Take(&account)
	if res.Error != nil {
		return account, fmt.Errorf("locking escrow account %s: %w", owner, res.Error)
	}
	return account, nil
}

func checkRefs(tx *gorm.DB, transfers []Transfer) error {
	refs := []string{}
	for _, t := range transfers {
		if t.Ref != "" {
			refs = append(refs, t.Ref)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	var count int64
	if res := tx.Model(&model.EscrowTransfer{}).Where("id IN ?", refs).Count(&count); res.Error != nil {
		return res.Error
	}
	if count > 0 {
		return fmt.Errorf("%w: %v", ErrDuplicateTransfer, refs)
	}
	return nil
}

func touchedOwners(transfers []Transfer) []string {
	seen := map[string]bool{}
	owners := []string{}
	for _, t := range transfers {
		for _, owner := range []string{t.From, t.To} {
			if owner == DepositSource || seen[owner] {
				continue
			}
			seen[owner] = true
			owners = append(owners, owner)
		}
	}
	sort.Strings(owners)
	return owners
}
