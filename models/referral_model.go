package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Referral is one currently-credited edge: ReferredID joined the channel
// through ReferrerID's personal link and is still a member. The unique
// index on ReferredID means a user can be credited to at most one
// referrer at a time, which also makes the (referrer, referred) pair
// unique. The row is deleted when the referred user leaves.
type Referral struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReferrerID int64     `gorm:"not null;index" json:"referrer_id"`
	ReferredID int64     `gorm:"not null;uniqueIndex" json:"referred_id"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate fills the id on engines without gen_random_uuid().
func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
