package telegram

import (
	"fmt"
	"time"

	"health_notification_engine/internal/domain/notify"

	"gopkg.in/telebot.v3"
)

// Sink delivers notifications to a Telegram chat via gopkg.in/telebot.v3.
// Used as the delivery channel in development and companion-bot builds;
// the engine only sees the notify.Sink interface.
type Sink struct {
	bot    *telebot.Bot
	chatID int64
}

func NewSink(bot *telebot.Bot, chatID int64) *Sink {
	return &Sink{bot: bot, chatID: chatID}
}

// SendNow delivers the payload immediately as a single message.
func (s *Sink) SendNow(payload notify.Payload) error {
	recipient := &telebot.User{ID: s.chatID}
	text := fmt.Sprintf("*%s*\n%s", payload.Title, payload.Body)
	_, err := s.bot.Send(recipient, text, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}

// ScheduleAt is not supported by the Bot API; the engine's own tick loop
// covers future slots. Returning an error here makes the engine fall back
// to app-driven ticking.
func (s *Sink) ScheduleAt(_ time.Time, _ notify.Payload) error {
	return fmt.Errorf("telegram sink does not support scheduled delivery")
}
