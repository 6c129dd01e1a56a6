package services

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MetaQop/tag-referalochka/models"
	"github.com/MetaQop/tag-referalochka/store"
)

func newTestLedger(t *testing.T) (*store.Ledger, *gorm.DB) {
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
	return store.NewLedger(db), db
}

var errTransportDown = errors.New("transport down")

type sentMessage struct {
	UserID int64
	Text   string
}

type createdLink struct {
	ChatID      int64
	Name        string
	MemberLimit int
}

// fakeTransport records every call and can be told to fail per method.
type fakeTransport struct {
	links    []createdLink
	messages []sentMessage
	removed  []int64

	failCreate bool
	failSend   bool
	failRemove bool
}

func (f *fakeTransport) CreateInviteLink(chatID int64, name string, memberLimit int) (string, error) {
	if f.failCreate {
		return "", errTransportDown
	}
	f.links = append(f.links, createdLink{ChatID: chatID, Name: name, MemberLimit: memberLimit})
	return fmt.Sprintf("https://t.me/+%s", name), nil
}

func (f *fakeTransport) SendMessage(userID int64, text string) error {
	if f.failSend {
		return errTransportDown
	}
	f.messages = append(f.messages, sentMessage{UserID: userID, Text: text})
	return nil
}

func (f *fakeTransport) RemoveMember(chatID, userID int64) error {
	if f.failRemove {
		return errTransportDown
	}
	f.removed = append(f.removed, userID)
	return nil
}
