package services

import "time"

// EffectKind names an outbound action a state transition asks for.
type EffectKind int

const (
	// EffectProgress tells the referrer a credited member joined.
	EffectProgress EffectKind = iota
	// EffectDecrement tells the referrer a credited member left.
	EffectDecrement
	// EffectGrant delivers a fresh single-use group invite.
	EffectGrant
	// EffectWarn is the pre-expiry warning.
	EffectWarn
	// EffectExpire kicks the user from the group and tells them why.
	EffectExpire
)

// Effect is one outbound action produced by a transition. Transitions
// commit their accounting first and only then return effects, so delivery
// failures can never corrupt the ledger; the dispatcher performs them
// best-effort.
type Effect struct {
	Kind      EffectKind
	UserID    int64
	Count     int
	ExpiresAt time.Time
}
