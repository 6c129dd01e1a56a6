package services

import (
	"context"
	"time"

	"github.com/MetaQop/tag-referalochka/models"
	"github.com/MetaQop/tag-referalochka/store"
)

// Lifecycle runs the per-user grant state machine: pending → completed →
// warned → expired → pending again. Each transition is a conditional
// update in the store, so replays and races settle there, and each
// returns the outbound effects for the dispatcher.
type Lifecycle struct {
	ledger        *store.Ledger
	grantPeriod   time.Duration
	warningWindow time.Duration

	clock func() time.Time
}

// NewLifecycle builds the engine. grantPeriod 0 means completion is
// permanent: no expiry timestamp is ever set and Sweep-driven transitions
// never fire.
func NewLifecycle(ledger *store.Ledger, grantPeriod, warningWindow time.Duration) *Lifecycle {
	return &Lifecycle{
		ledger:        ledger,
		grantPeriod:   grantPeriod,
		warningWindow: warningWindow,
		clock:         time.Now,
	}
}

// OnThreshold flips the user to completed and opens the grant period.
// The conditional update makes the grant exactly-once: a duplicate
// trigger (replayed join event, racing deliveries) updates zero rows and
// produces no effects.
func (e *Lifecycle) OnThreshold(ctx context.Context, userID int64) ([]Effect, error) {
	var expiresAt *time.Time
	if e.grantPeriod > 0 {
		t := e.clock().Add(e.grantPeriod)
		expiresAt = &t
	}

	applied, err := e.ledger.MarkCompleted(ctx, userID, expiresAt)
	if err != nil || !applied {
		return nil, err
	}
	return []Effect{{Kind: EffectGrant, UserID: userID}}, nil
}

// Warn sends the advance warning for a grant entering its last stretch.
// Notified flips under a conditional update, so a user picked up by two
// overlapping sweeps is warned once.
func (e *Lifecycle) Warn(ctx context.Context, user models.User) ([]Effect, error) {
	applied, err := e.ledger.MarkNotified(ctx, user.UserID)
	if err != nil || !applied {
		return nil, err
	}
	eff := Effect{Kind: EffectWarn, UserID: user.UserID}
	if user.ExpiresAt != nil {
		eff.ExpiresAt = *user.ExpiresAt
	}
	return []Effect{eff}, nil
}

// Expire closes the grant period. The counter is preserved: the user only
// re-earns access when a new credit crosses the threshold again and the
// completed flag is false again.
func (e *Lifecycle) Expire(ctx context.Context, user models.User) ([]Effect, error) {
	applied, err := e.ledger.ResetGrant(ctx, user.UserID)
	if err != nil || !applied {
		return nil, err
	}
	return []Effect{{Kind: EffectExpire, UserID: user.UserID}}, nil
}

// WarningWindow exposes the configured window to the sweeper.
func (e *Lifecycle) WarningWindow() time.Duration {
	return e.warningWindow
}
