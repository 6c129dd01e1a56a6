package store

import (
	"context"
	"errors"
	"time"

	"github.com/MetaQop/tag-referalochka/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = gorm.ErrRecordNotFound

var errNoEdge = errors.New("no referral edge")

// Ledger is the durable state behind the whole engine: the users table
// and the referral-edge table. Every mutation that must be race-safe is a
// single transaction or a single conditional UPDATE here; callers never
// do read-modify-write on these rows.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// CreateUser inserts the user if absent and returns the persisted row.
// Concurrent first-time registrations race on the primary key; the loser
// of the race reads back the winner's row, so every caller observes the
// same invite link.
func (l *Ledger) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.User{}, err
	}

	var persisted models.User
	if err := l.db.WithContext(ctx).First(&persisted, "user_id = ?", user.UserID).Error; err != nil {
		return models.User{}, err
	}
	return persisted, nil
}

func (l *Ledger) GetUser(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	err := l.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	return user, err
}

func (l *Ledger) GetUserByInviteLink(ctx context.Context, link string) (models.User, error) {
	var user models.User
	err := l.db.WithContext(ctx).First(&user, "invite_link = ?", link).Error
	return user, err
}

// Credit inserts the referral edge and bumps the referrer's counter in
// one transaction. The unique index on referred_id is the arbiter under
// concurrency: exactly one of two racing inserts commits, the other rolls
// back and reports applied=false. Returns the counter as of this call.
func (l *Ledger) Credit(ctx context.Context, referrerID, referredID int64) (bool, int, error) {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge := models.Referral{ReferrerID: referrerID, ReferredID: referredID}
		if err := tx.Create(&edge).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("user_id = ?", referrerID).
			Update("invited_count", gorm.Expr("invited_count + 1")).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		count, cerr := l.invitedCount(ctx, referrerID)
		return false, count, cerr
	}
	if err != nil {
		return false, 0, err
	}
	count, err := l.invitedCount(ctx, referrerID)
	return true, count, err
}

// Revoke deletes the edge if it exists and decrements the counter,
// floored at zero. A second revoke for the same pair finds no edge and
// reports applied=false without touching the counter.
func (l *Ledger) Revoke(ctx context.Context, referrerID, referredID int64) (bool, int, error) {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("referrer_id = ? AND referred_id = ?", referrerID, referredID).
			Delete(&models.Referral{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoEdge
		}
		return tx.Model(&models.User{}).
			Where("user_id = ?", referrerID).
			Update("invited_count", gorm.Expr("CASE WHEN invited_count > 0 THEN invited_count - 1 ELSE 0 END")).Error
	})
	if errors.Is(err, errNoEdge) {
		count, cerr := l.invitedCount(ctx, referrerID)
		return false, count, cerr
	}
	if err != nil {
		return false, 0, err
	}
	count, err := l.invitedCount(ctx, referrerID)
	return true, count, err
}

// ReferrerOf reports which user currently holds credit for referredID.
func (l *Ledger) ReferrerOf(ctx context.Context, referredID int64) (int64, bool, error) {
	var edge models.Referral
	err := l.db.WithContext(ctx).First(&edge, "referred_id = ?", referredID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return edge.ReferrerID, true, nil
}

// MarkCompleted flips completed false→true and opens the grant period.
// The WHERE completed = false guard makes the transition exactly-once: a
// replayed trigger finds zero rows to update and reports false.
func (l *Ledger) MarkCompleted(ctx context.Context, userID int64, expiresAt *time.Time) (bool, error) {
	res := l.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND completed = ?", userID, false).
		Updates(map[string]interface{}{
			"completed":  true,
			"expires_at": expiresAt,
			"notified":   false,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkNotified records the pre-expiry warning, once per grant period.
func (l *Ledger) MarkNotified(ctx context.Context, userID int64) (bool, error) {
	res := l.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND completed = ? AND notified = ?", userID, true, false).
		Update("notified", true)
	return res.RowsAffected > 0, res.Error
}

// ResetGrant closes the grant period, leaving invited_count untouched.
func (l *Ledger) ResetGrant(ctx context.Context, userID int64) (bool, error) {
	res := l.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Updates(map[string]interface{}{
			"completed":  false,
			"expires_at": nil,
			"notified":   false,
		})
	return res.RowsAffected > 0, res.Error
}

// DueForWarning lists users whose grant enters the warning window at now
// and who have not been warned this period.
func (l *Ledger) DueForWarning(ctx context.Context, now time.Time, window time.Duration) ([]models.User, error) {
	var users []models.User
	err := l.db.WithContext(ctx).
		Where("completed = ? AND notified = ? AND expires_at IS NOT NULL AND expires_at <= ?",
			true, false, now.Add(window)).
		Find(&users).Error
	return users, err
}

// DueForExpiry lists users whose grant period has ended.
func (l *Ledger) DueForExpiry(ctx context.Context, now time.Time) ([]models.User, error) {
	var users []models.User
	err := l.db.WithContext(ctx).
		Where("completed = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Find(&users).Error
	return users, err
}

// Stats is the read-only aggregate for the ops endpoint.
type Stats struct {
	Users     int64 `json:"users"`
	Referrals int64 `json:"referrals"`
	Completed int64 `json:"completed"`
}

func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := l.db.WithContext(ctx).Model(&models.User{}).Count(&s.Users).Error; err != nil {
		return s, err
	}
	if err := l.db.WithContext(ctx).Model(&models.Referral{}).Count(&s.Referrals).Error; err != nil {
		return s, err
	}
	err := l.db.WithContext(ctx).Model(&models.User{}).
		Where("completed = ?", true).Count(&s.Completed).Error
	return s, err
}

func (l *Ledger) invitedCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := l.db.WithContext(ctx).Model(&models.User{}).
		Select("invited_count").
		Where("user_id = ?", userID).
		Scan(&count).Error
	return count, err
}
