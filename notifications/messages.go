package notifications

import (
	"fmt"
	"time"
)

// User-facing texts. Telegram HTML parse mode, same register everywhere.

func Welcome(name string, required int) string {
	return fmt.Sprintf(
		"👋 Привет, <b>%s</b>!\n\n"+
			"Это бот доступа в <b>Закрытую Группу</b>. Правила просты:\n"+
			"1️⃣ Нажми кнопку <b>'Получить ссылку'</b>.\n"+
			"2️⃣ Пригласи по ней <b>%d друзей</b> в наш Канал.\n"+
			"3️⃣ Бот автоматически пришлет тебе доступ в Группу!",
		name, required,
	)
}

func LinkIssued(link string, required int) string {
	return fmt.Sprintf(
		"🔗 <b>Твоя персональная ссылка:</b>\n\n<code>%s</code>\n\n"+
			"Пересылай её друзьям. Когда %d чел. вступят, ты получишь награду!",
		link, required,
	)
}

func Stats(invited, required int, completed bool) string {
	status := "✅ Выполнено!"
	if !completed {
		remaining := required - invited
		if remaining < 0 {
			remaining = 0
		}
		status = fmt.Sprintf("⏳ Осталось: %d", remaining)
	}
	return fmt.Sprintf(
		"📊 <b>Твоя статистика:</b>\n\n"+
			"👥 Приглашено: <b>%d</b>\n"+
			"🎯 Цель: <b>%d</b>\n"+
			"📝 Статус: <b>%s</b>",
		invited, required, status,
	)
}

func Progress(count, required int) string {
	return fmt.Sprintf(
		"🎉 По твоей ссылке вступил новый человек! Прогресс: <b>%d/%d</b>",
		count, required,
	)
}

func Decrement(count, required int) string {
	return fmt.Sprintf(
		"😔 Один из приглашённых покинул канал. Прогресс: <b>%d/%d</b>",
		count, required,
	)
}

func Granted(link string) string {
	return fmt.Sprintf(
		"🏆 <b>Поздравляем! Ты выполнил задание!</b>\n\n"+
			"Вот твоя ссылка в закрытую Группу:\n"+
			"🔐 <b><a href='%s'>ВСТУПИТЬ В ГРУППУ</a></b>\n\n"+
			"<i>Ссылка одноразовая, не передавай её никому.</i>",
		link,
	)
}

func Warning(expiresAt time.Time) string {
	return fmt.Sprintf(
		"⏰ <b>Напоминание:</b> твой доступ в Группу заканчивается <b>%s</b>.\n"+
			"Пригласи друзей снова, чтобы продлить его!",
		expiresAt.Format("02.01.2006 15:04"),
	)
}

func Expired() string {
	return "🚪 Срок доступа в Группу истёк, и мы тебя отключили.\n" +
		"Пригласи друзей снова — и получишь новую ссылку!"
}
