package services

import (
	"context"

	"github.com/MetaQop/tag-referalochka/store"
)

// Accounting maintains the referral ledger: exactly-once edge inserts
// with reversal. The counter lives and dies with the edge inside a store
// transaction; this layer adds the business rejections that never reach
// storage.
type Accounting struct {
	ledger *store.Ledger
}

func NewAccounting(ledger *store.Ledger) *Accounting {
	return &Accounting{ledger: ledger}
}

// Credit records that referredID joined through referrerID's link.
// Self-referrals and already-credited users are rejected without any
// mutation; concurrent duplicates are settled by the storage unique
// constraint, so exactly one of two racing calls applies.
func (a *Accounting) Credit(ctx context.Context, referrerID, referredID int64) (bool, int, error) {
	if referrerID == referredID {
		return false, 0, nil
	}
	return a.ledger.Credit(ctx, referrerID, referredID)
}

// Revoke withdraws credit when the referred user leaves the channel. A
// duplicate leave event finds no edge and is absorbed as a no-op.
func (a *Accounting) Revoke(ctx context.Context, referrerID, referredID int64) (bool, int, error) {
	return a.ledger.Revoke(ctx, referrerID, referredID)
}

// CreditHolder reports who currently holds credit for referredID.
func (a *Accounting) CreditHolder(ctx context.Context, referredID int64) (int64, bool, error) {
	return a.ledger.ReferrerOf(ctx, referredID)
}
