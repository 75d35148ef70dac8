package escrow

import (
	"context"
	"fmt"
	"sync"
)

type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]uint64
	refs     map[string]bool
	history  []Transfer
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]uint64), refs: make(map[string]bool)}
}

func (l *MemoryLedger) Deposit(ctx context.Context, owner string, amount uint64) error {
	return l.Apply(ctx, Transfer{From: DepositSource, To: owner, Amount: amount, Reason: ReasonDeposit})
}

func (l *MemoryLedger) DepositOnce(ctx context.Context, owner string, amount uint64, ref string) error {
	return l.Apply(ctx, Transfer{From: DepositSource, To: owner, Amount: amount, Reason: ReasonDeposit, Ref: DepositRef(ref)})
}

func (l *MemoryLedger) Apply(_ context.Context, transfers ...Transfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	scratch := make(map[string]uint64)
	batchRefs := make(map[string]bool)
	for _, t := range transfers {
		if err := validate(t); err != nil {
			return err
		}
		if t.Ref != "" {
			if l.refs[t.Ref] || batchRefs[t.Ref] {
				return fmt.Errorf("%w: %s", ErrDuplicateTransfer, t.Ref)
			}
			batchRefs[t.Ref] = true
		}
		for _, owner := range []string{t.From, t.To} {
			if _, ok := scratch[owner]; !ok {
				scratch[owner] = l.balances[owner]
			}
		}
		if err := move(scratch, t); err != nil {
			return err
		}
	}

	for owner, balance := range scratch {
		if owner == DepositSource {
			continue
		}
		l.balances[owner] = balance
	}
	for ref := range batchRefs {
		l.refs[ref] = true
	}
	l.history = append(l.history, transfers...)
	return nil
}

func (l *MemoryLedger) Balance(_ context.Context, owner string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[owner], nil
}

func (l *MemoryLedger) Transfers() []Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transfer(nil), l.history...)
}
