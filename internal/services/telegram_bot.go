package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger: то, что нужно хендлерам от транспорта (удобно мокать в тестах)
type Messenger interface {
	SendMessage(chatID int64, text string) error
}

type TelegramService struct {
	bot         *tgbotapi.BotAPI
	pollTimeout int
}

func NewTelegramService(botToken string, pollTimeout int, debug bool) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	bot.Debug = debug
	log.Printf("[tg][auth] authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot, pollTimeout: pollTimeout}, nil
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || t.bot == nil || chatID == 0 {
		log.Printf("[tg][skip] bot or chatID empty (bot? %v chatID=%d)", t != nil && t.bot != nil, chatID)
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	log.Printf("[tg][send] chatID=%d text=%q", chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chatID=%d: %v", chatID, err)
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}

// Poll delivers updates from long polling to handle, one at a time,
// until ctx is cancelled.
func (t *TelegramService) Poll(ctx context.Context, handle func(context.Context, tgbotapi.Update)) {
	if _, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Printf("[tg][poll] delete webhook: %v", err)
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	log.Printf("[tg][poll] started timeout=%ds", t.pollTimeout)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[tg][poll] stopped: %v", ctx.Err())
			return
		case up, ok := <-updates:
			if !ok {
				return
			}
			handle(ctx, up)
		}
	}
}

func (t *TelegramService) SetWebhook(url string) error {
	if t == nil || t.bot == nil || url == "" {
		return nil
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	log.Printf("[tg][setWebhook] %s", url)
	if _, err := t.bot.Request(wh); err != nil {
		return fmt.Errorf("setWebhook: %w", err)
	}
	return nil
}

// ParseWebhook decodes an incoming webhook request body into an update.
func (t *TelegramService) ParseWebhook(r *http.Request) (*tgbotapi.Update, error) {
	return t.bot.HandleUpdate(r)
}
