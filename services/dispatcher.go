package services

import (
	"fmt"
	"log"

	"github.com/MetaQop/tag-referalochka/notifications"
)

// Dispatcher delivers effects through the transport. Every delivery is
// best-effort: failures are logged and the remaining effects still run.
type Dispatcher struct {
	transport Transport
	groupID   int64
	required  int
}

func NewDispatcher(transport Transport, groupID int64, required int) *Dispatcher {
	return &Dispatcher{transport: transport, groupID: groupID, required: required}
}

func (d *Dispatcher) Dispatch(effects []Effect) {
	for _, eff := range effects {
		if err := d.dispatch(eff); err != nil {
			log.Printf("🔥 Delivery failed for user %d: %v", eff.UserID, err)
		}
	}
}

func (d *Dispatcher) dispatch(eff Effect) error {
	switch eff.Kind {
	case EffectProgress:
		return d.send(eff.UserID, notifications.Progress(eff.Count, d.required))
	case EffectDecrement:
		return d.send(eff.UserID, notifications.Decrement(eff.Count, d.required))
	case EffectGrant:
		link, err := d.transport.CreateInviteLink(d.groupID, fmt.Sprintf("reward_%d", eff.UserID), 1)
		if err != nil {
			return &TransportError{Op: "createInviteLink", Err: err}
		}
		return d.send(eff.UserID, notifications.Granted(link))
	case EffectWarn:
		return d.send(eff.UserID, notifications.Warning(eff.ExpiresAt))
	case EffectExpire:
		if err := d.transport.RemoveMember(d.groupID, eff.UserID); err != nil {
			// The reset already committed; the next sweep will not see
			// this user again, so the kick has to be reported loudly.
			log.Printf("🔥 Could not remove user %d from the group: %v", eff.UserID, err)
		}
		return d.send(eff.UserID, notifications.Expired())
	default:
		return fmt.Errorf("unknown effect kind %d", eff.Kind)
	}
}

func (d *Dispatcher) send(userID int64, text string) error {
	if err := d.transport.SendMessage(userID, text); err != nil {
		return &TransportError{Op: "sendMessage", Err: err}
	}
	return nil
}
