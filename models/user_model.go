package models

import (
	"time"
)

// User is one recruiting participant, keyed by Telegram account id.
// InvitedCount is a denormalized cache of the live referral-edge count for
// this user and is only ever mutated inside the same transaction as the
// edge insert/delete.
type User struct {
	UserID   int64  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Username string `gorm:"size:255;not null;default:''" json:"username"`
	FullName string `gorm:"size:255;not null;default:''" json:"full_name"`

	InviteLink   string `gorm:"size:255;uniqueIndex;not null" json:"invite_link"`
	InvitedCount int    `gorm:"not null;default:0" json:"invited_count"`

	Completed bool       `gorm:"not null;default:false" json:"completed"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`
	Notified  bool       `gorm:"not null;default:false" json:"notified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
