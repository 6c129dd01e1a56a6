package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/MetaQop/tag-referalochka/models"
	"github.com/MetaQop/tag-referalochka/store"
)

// Registry owns the mapping between a user and their personal channel
// invite link. Links are minted by the transport (Telegram generates the
// actual URL); the registry persists them and resolves them back to the
// owning user on join events.
type Registry struct {
	ledger    *store.Ledger
	transport Transport
	channelID int64
}

func NewRegistry(ledger *store.Ledger, transport Transport, channelID int64) *Registry {
	return &Registry{ledger: ledger, transport: transport, channelID: channelID}
}

// Issue returns the user's invite link, creating the user on first
// contact. Repeat calls return the already-persisted link without talking
// to the transport. Two concurrent first calls may both mint a link, but
// the insert-or-ignore on the user row means exactly one is persisted and
// both callers read that one back.
func (r *Registry) Issue(ctx context.Context, userID int64, username, fullName string) (string, error) {
	user, err := r.ledger.GetUser(ctx, userID)
	if err == nil {
		return user.InviteLink, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	link, err := r.transport.CreateInviteLink(r.channelID, fmt.Sprintf("ref_%d", userID), 0)
	if err != nil {
		return "", &TransportError{Op: "createInviteLink", Err: err}
	}

	persisted, err := r.ledger.CreateUser(ctx, models.User{
		UserID:     userID,
		Username:   username,
		FullName:   fullName,
		InviteLink: link,
	})
	if err != nil {
		return "", err
	}
	return persisted.InviteLink, nil
}

// Resolve maps an invite link back to the referrer who owns it. A link
// the registry never issued resolves to ok=false (organic join).
func (r *Registry) Resolve(ctx context.Context, link string) (int64, bool, error) {
	user, err := r.ledger.GetUserByInviteLink(ctx, link)
	if errors.Is(err, store.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return user.UserID, true, nil
}
