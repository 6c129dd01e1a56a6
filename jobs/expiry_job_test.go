package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MetaQop/tag-referalochka/models"
	"github.com/MetaQop/tag-referalochka/services"
	"github.com/MetaQop/tag-referalochka/store"
)

var base = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type fakeTransport struct {
	messages map[int64][]string
	removed  []int64
	failSend bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{messages: make(map[int64][]string)}
}

func (f *fakeTransport) CreateInviteLink(chatID int64, name string, memberLimit int) (string, error) {
	return fmt.Sprintf("https://t.me/+%s", name), nil
}

func (f *fakeTransport) SendMessage(userID int64, text string) error {
	if f.failSend {
		return errors.New("transport down")
	}
	f.messages[userID] = append(f.messages[userID], text)
	return nil
}

func (f *fakeTransport) RemoveMember(chatID, userID int64) error {
	f.removed = append(f.removed, userID)
	return nil
}

func newTestSweeper(t *testing.T, transport *fakeTransport, now time.Time) (*ExpirySweeper, *store.Ledger, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Referral{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	ledger := store.NewLedger(db)
	lifecycle := services.NewLifecycle(ledger, 7*24*time.Hour, 72*time.Hour)
	dispatcher := services.NewDispatcher(transport, -2002, 3)

	sweeper := NewExpirySweeper(ledger, lifecycle, dispatcher)
	sweeper.clock = func() time.Time { return now }
	return sweeper, ledger, db
}

func seedGrant(t *testing.T, db *gorm.DB, userID int64, expiresAt time.Time, notified bool) {
	t.Helper()
	user := models.User{
		UserID:     userID,
		InviteLink: fmt.Sprintf("link-%d", userID),
		Completed:  true,
		ExpiresAt:  &expiresAt,
		Notified:   notified,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed grant for %d: %v", userID, err)
	}
}

func TestSweepWarnsOnce(t *testing.T) {
	transport := newFakeTransport()
	// Grant expires at base+7d; the sweep runs at base+4d with a 3d
	// window, so the warning is due.
	sweeper, ledger, db := newTestSweeper(t, transport, base.Add(4*24*time.Hour))
	seedGrant(t, db, 1, base.Add(7*24*time.Hour), false)

	sweeper.Run()

	if len(transport.messages[1]) != 1 {
		t.Fatalf("expected exactly one warning, got %v", transport.messages[1])
	}
	user, err := ledger.GetUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !user.Notified || !user.Completed {
		t.Fatalf("expected notified grant still active, got %+v", user)
	}

	// A second sweep before expiry sends nothing new.
	sweeper.Run()
	if len(transport.messages[1]) != 1 {
		t.Fatalf("second sweep warned again: %v", transport.messages[1])
	}
}

func TestSweepBeforeWindowIsSilent(t *testing.T) {
	transport := newFakeTransport()
	sweeper, _, db := newTestSweeper(t, transport, base)
	seedGrant(t, db, 1, base.Add(7*24*time.Hour), false)

	sweeper.Run()

	if len(transport.messages[1]) != 0 || len(transport.removed) != 0 {
		t.Fatalf("nothing is due yet: messages=%v removed=%v", transport.messages, transport.removed)
	}
}

func TestSweepExpires(t *testing.T) {
	transport := newFakeTransport()
	// Sweep at base+8d, grant expired at base+7d.
	sweeper, ledger, db := newTestSweeper(t, transport, base.Add(8*24*time.Hour))
	seedGrant(t, db, 1, base.Add(7*24*time.Hour), true)

	sweeper.Run()

	if len(transport.removed) != 1 || transport.removed[0] != 1 {
		t.Fatalf("expected user 1 removed from the group, got %v", transport.removed)
	}
	if len(transport.messages[1]) != 1 {
		t.Fatalf("expected one expiry notice, got %v", transport.messages[1])
	}

	user, err := ledger.GetUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Completed || user.ExpiresAt != nil || user.Notified {
		t.Fatalf("grant not reset: %+v", user)
	}

	// Expired users must not receive a warning in the same cycle.
	for _, texts := range transport.messages {
		if len(texts) != 1 {
			t.Fatalf("unexpected extra messages: %v", transport.messages)
		}
	}
}

func TestSweepIsolatesFailures(t *testing.T) {
	transport := newFakeTransport()
	transport.failSend = true
	sweeper, ledger, db := newTestSweeper(t, transport, base.Add(8*24*time.Hour))
	seedGrant(t, db, 1, base.Add(7*24*time.Hour), true)
	seedGrant(t, db, 2, base.Add(7*24*time.Hour), true)

	sweeper.Run()

	// Message delivery failed for both, but both grants were reset and
	// both kicks attempted: one user's transport trouble never blocks
	// the rest of the sweep.
	if len(transport.removed) != 2 {
		t.Fatalf("expected both users removed, got %v", transport.removed)
	}
	for _, id := range []int64{1, 2} {
		user, err := ledger.GetUser(context.Background(), id)
		if err != nil {
			t.Fatalf("get user %d: %v", id, err)
		}
		if user.Completed {
			t.Fatalf("grant for %d not reset", id)
		}
	}
}
