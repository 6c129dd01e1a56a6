package jobs

import (
	"context"
	"log"
	"time"

	"github.com/MetaQop/tag-referalochka/services"
	"github.com/MetaQop/tag-referalochka/store"
)

// ExpirySweeper walks the ledger on a schedule and drives the timed
// transitions: kick users whose grant period ended, warn users entering
// the warning window. Every user is handled independently; one failure is
// logged and the sweep moves on. A crashed or skipped run loses nothing,
// the next run re-evaluates the same conditions.
type ExpirySweeper struct {
	ledger     *store.Ledger
	lifecycle  *services.Lifecycle
	dispatcher *services.Dispatcher

	clock func() time.Time
}

func NewExpirySweeper(ledger *store.Ledger, lifecycle *services.Lifecycle, dispatcher *services.Dispatcher) *ExpirySweeper {
	return &ExpirySweeper{
		ledger:     ledger,
		lifecycle:  lifecycle,
		dispatcher: dispatcher,
		clock:      time.Now,
	}
}

// Run executes one sweep cycle. The expiry pass goes first so a user who
// is already past the deadline is reset and kicked, not warned.
func (s *ExpirySweeper) Run() {
	log.Println("Running job: ExpirySweep...")

	ctx := context.Background()
	now := s.clock()

	expired, err := s.ledger.DueForExpiry(ctx, now)
	if err != nil {
		log.Printf("🔥 Expiry sweep query failed: %v", err)
	} else {
		for _, user := range expired {
			effects, err := s.lifecycle.Expire(ctx, user)
			if err != nil {
				log.Printf("🔥 Could not expire grant for user %d: %v", user.UserID, err)
				continue
			}
			s.dispatcher.Dispatch(effects)
		}
	}

	due, err := s.ledger.DueForWarning(ctx, now, s.lifecycle.WarningWindow())
	if err != nil {
		log.Printf("🔥 Warning sweep query failed: %v", err)
		return
	}
	for _, user := range due {
		effects, err := s.lifecycle.Warn(ctx, user)
		if err != nil {
			log.Printf("🔥 Could not warn user %d: %v", user.UserID, err)
			continue
		}
		s.dispatcher.Dispatch(effects)
	}
}
