package services

import (
	"strings"
	"testing"
	"time"
)

const testGroupID = int64(-2002)

func TestDispatchGrant(t *testing.T) {
	transport := &fakeTransport{}
	dispatcher := NewDispatcher(transport, testGroupID, 3)

	dispatcher.Dispatch([]Effect{{Kind: EffectGrant, UserID: 1}})

	if len(transport.links) != 1 {
		t.Fatalf("expected one invite link, got %d", len(transport.links))
	}
	link := transport.links[0]
	if link.ChatID != testGroupID || link.Name != "reward_1" || link.MemberLimit != 1 {
		t.Fatalf("grant link must be single-use in the group: %+v", link)
	}
	if len(transport.messages) != 1 || transport.messages[0].UserID != 1 {
		t.Fatalf("expected the grant message, got %+v", transport.messages)
	}
	if !strings.Contains(transport.messages[0].Text, link.Name) {
		t.Fatalf("grant message must carry the minted link, got %q", transport.messages[0].Text)
	}
}

func TestDispatchExpireKicks(t *testing.T) {
	transport := &fakeTransport{}
	dispatcher := NewDispatcher(transport, testGroupID, 3)

	dispatcher.Dispatch([]Effect{{Kind: EffectExpire, UserID: 9}})

	if len(transport.removed) != 1 || transport.removed[0] != 9 {
		t.Fatalf("expected user 9 removed, got %+v", transport.removed)
	}
	if len(transport.messages) != 1 || transport.messages[0].UserID != 9 {
		t.Fatalf("expected an expiry notice, got %+v", transport.messages)
	}
}

func TestDispatchContinuesPastFailures(t *testing.T) {
	transport := &fakeTransport{failCreate: true}
	dispatcher := NewDispatcher(transport, testGroupID, 3)

	dispatcher.Dispatch([]Effect{
		{Kind: EffectGrant, UserID: 1},
		{Kind: EffectProgress, UserID: 2, Count: 1},
		{Kind: EffectWarn, UserID: 3, ExpiresAt: time.Date(2026, 9, 8, 12, 0, 0, 0, time.UTC)},
	})

	// The failed grant is logged; later effects still deliver.
	if len(transport.messages) != 2 {
		t.Fatalf("expected two delivered messages, got %+v", transport.messages)
	}
	if transport.messages[0].UserID != 2 || transport.messages[1].UserID != 3 {
		t.Fatalf("unexpected recipients: %+v", transport.messages)
	}
}
