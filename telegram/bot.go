package telegram

import (
	"context"
	"errors"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MetaQop/tag-referalochka/notifications"
	"github.com/MetaQop/tag-referalochka/services"
	"github.com/MetaQop/tag-referalochka/store"
)

// Bot owns the long-polling loop and routes updates: commands and button
// presses to the registry, membership changes to the event processor.
type Bot struct {
	api        *tgbotapi.BotAPI
	ledger     *store.Ledger
	registry   *services.Registry
	processor  *services.Processor
	dispatcher *services.Dispatcher
	required   int
}

func NewBot(api *tgbotapi.BotAPI, ledger *store.Ledger, registry *services.Registry, processor *services.Processor, dispatcher *services.Dispatcher, required int) *Bot {
	return &Bot{
		api:        api,
		ledger:     ledger,
		registry:   registry,
		processor:  processor,
		dispatcher: dispatcher,
		required:   required,
	}
}

func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "chat_member", "callback_query"}

	updates := b.api.GetUpdatesChan(u)
	log.Println("✅ Bot is polling for updates.")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.ChatMember != nil:
		b.handleChatMember(ctx, update.ChatMember)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	}
}

func (b *Bot) handleChatMember(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) {
	ev := services.MembershipEvent{
		ChatID:    upd.Chat.ID,
		UserID:    upd.NewChatMember.User.ID,
		OldStatus: upd.OldChatMember.Status,
		NewStatus: upd.NewChatMember.Status,
	}
	if upd.InviteLink != nil {
		ev.InviteLink = upd.InviteLink.InviteLink
	}

	effects, err := b.processor.Process(ctx, ev)
	if err != nil {
		log.Printf("🔥 Membership event for user %d failed: %v", ev.UserID, err)
		return
	}
	b.dispatcher.Dispatch(effects)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	if msg.Command() != "start" {
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, notifications.Welcome(fullName(msg.From), b.required))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = mainMenu()
	if _, err := b.api.Send(reply); err != nil {
		log.Printf("🔥 Could not send welcome to %d: %v", msg.Chat.ID, err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	switch cq.Data {
	case "get_link":
		b.handleGetLink(ctx, cq)
	case "my_stats":
		b.handleStats(ctx, cq)
	}
}

func (b *Bot) handleGetLink(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	from := cq.From
	link, err := b.registry.Issue(ctx, from.ID, from.UserName, fullName(from))
	if err != nil {
		var terr *services.TransportError
		if errors.As(err, &terr) {
			b.answerAlert(cq.ID, "❌ Ошибка: Бот не админ в канале!")
		} else {
			log.Printf("🔥 Could not issue link for %d: %v", from.ID, err)
			b.answerAlert(cq.ID, "❌ Что-то пошло не так, попробуй позже.")
		}
		return
	}

	b.send(from.ID, notifications.LinkIssued(link, b.required))
	b.answer(cq.ID)
}

func (b *Bot) handleStats(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	user, err := b.ledger.GetUser(ctx, cq.From.ID)
	if errors.Is(err, store.ErrNotFound) {
		b.answerAlert(cq.ID, "Сначала нажми 'Получить ссылку'!")
		return
	}
	if err != nil {
		log.Printf("🔥 Could not load stats for %d: %v", cq.From.ID, err)
		b.answerAlert(cq.ID, "❌ Что-то пошло не так, попробуй позже.")
		return
	}

	b.send(cq.From.ID, notifications.Stats(user.InvitedCount, b.required, user.Completed))
	b.answer(cq.ID)
}

func (b *Bot) send(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("🔥 Could not send message to %d: %v", userID, err)
	}
}

func (b *Bot) answer(callbackID string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		log.Printf("🔥 Could not answer callback: %v", err)
	}
}

func (b *Bot) answerAlert(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		log.Printf("🔥 Could not answer callback: %v", err)
	}
}

func mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔗 Получить ссылку", "get_link"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Моя статистика", "my_stats"),
		),
	)
}

func fullName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}
