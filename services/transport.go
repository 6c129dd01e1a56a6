package services

import "fmt"

// Transport is the chat collaborator the engine drives. The Telegram
// adapter implements it; tests substitute fakes. RemoveMember must behave
// as kick-without-permanent-ban so the user can come back later through a
// fresh invite.
type Transport interface {
	// CreateInviteLink creates an invite link in the given chat.
	// memberLimit 0 means unlimited, 1 means single-use.
	CreateInviteLink(chatID int64, name string, memberLimit int) (string, error)
	SendMessage(userID int64, text string) error
	RemoveMember(chatID, userID int64) error
}

// TransportError wraps an external send/link-creation failure. It is
// surfaced to the caller of the triggering operation but never rolled
// back against already-committed accounting state.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
