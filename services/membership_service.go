package services

import (
	"context"
)

// Chat member statuses as the transport reports them.
const (
	StatusMember = "member"
	StatusLeft   = "left"
	StatusKicked = "kicked"
)

// MembershipEvent is the normalized membership change delivered by the
// transport. InviteLink is empty when the member joined organically.
type MembershipEvent struct {
	ChatID     int64
	UserID     int64
	OldStatus  string
	NewStatus  string
	InviteLink string
}

// Processor turns membership events into ledger mutations and outbound
// effects. Joins through a registered link earn the referrer credit;
// leaves take it back. Events for other chats, organic joins, self-joins
// and replays all fall through silently.
type Processor struct {
	registry   *Registry
	accounting *Accounting
	lifecycle  *Lifecycle
	channelID  int64
	required   int
}

func NewProcessor(registry *Registry, accounting *Accounting, lifecycle *Lifecycle, channelID int64, required int) *Processor {
	return &Processor{
		registry:   registry,
		accounting: accounting,
		lifecycle:  lifecycle,
		channelID:  channelID,
		required:   required,
	}
}

func (p *Processor) Process(ctx context.Context, ev MembershipEvent) ([]Effect, error) {
	if ev.ChatID != p.channelID {
		return nil, nil
	}
	switch {
	case isJoin(ev):
		return p.handleJoin(ctx, ev)
	case isLeave(ev):
		return p.handleLeave(ctx, ev)
	}
	return nil, nil
}

func (p *Processor) handleJoin(ctx context.Context, ev MembershipEvent) ([]Effect, error) {
	if ev.InviteLink == "" {
		return nil, nil
	}
	referrerID, ok, err := p.registry.Resolve(ctx, ev.InviteLink)
	if err != nil {
		return nil, err
	}
	if !ok || referrerID == ev.UserID {
		return nil, nil
	}

	applied, count, err := p.accounting.Credit(ctx, referrerID, ev.UserID)
	if err != nil || !applied {
		return nil, err
	}

	if count >= p.required {
		return p.lifecycle.OnThreshold(ctx, referrerID)
	}
	return []Effect{{Kind: EffectProgress, UserID: referrerID, Count: count}}, nil
}

// handleLeave is the anti-gaming control: credit is provisional on
// continued channel membership.
func (p *Processor) handleLeave(ctx context.Context, ev MembershipEvent) ([]Effect, error) {
	referrerID, ok, err := p.accounting.CreditHolder(ctx, ev.UserID)
	if err != nil || !ok {
		return nil, err
	}

	applied, count, err := p.accounting.Revoke(ctx, referrerID, ev.UserID)
	if err != nil || !applied {
		return nil, err
	}
	return []Effect{{Kind: EffectDecrement, UserID: referrerID, Count: count}}, nil
}

func isJoin(ev MembershipEvent) bool {
	wasOut := ev.OldStatus == StatusLeft || ev.OldStatus == StatusKicked
	return wasOut && ev.NewStatus == StatusMember
}

func isLeave(ev MembershipEvent) bool {
	isOut := ev.NewStatus == StatusLeft || ev.NewStatus == StatusKicked
	return ev.OldStatus == StatusMember && isOut
}
