package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"teamjoin/internal/services"
)

const helpText = "👋 Hi! I can add you to our Canva team.\n\n" +
	"/joincanva - start joining\n" +
	"/status - show your access\n" +
	"/cancel - stop the current attempt"

// BotHandler maps Telegram updates onto the join flow. Updates must be fed
// one at a time.
type BotHandler struct {
	TG   services.Messenger
	Join *services.JoinService
}

func NewBotHandler(tg services.Messenger, join *services.JoinService) *BotHandler {
	return &BotHandler{TG: tg, Join: join}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, up tgbotapi.Update) {
	msg := up.Message
	if msg == nil || msg.From == nil {
		return
	}
	userID := strconv.FormatInt(msg.From.ID, 10)
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	log.Printf("[bot][update] userID=%s chatID=%d command=%q", userID, chatID, msg.Command())

	var reply string
	if msg.IsCommand() {
		switch msg.Command() {
		case "joincanva":
			reply = h.Join.Start(ctx, userID)
		case "start", "help":
			reply = helpText
		case "cancel":
			reply = h.Join.Cancel(userID)
		case "status":
			reply = h.Join.Status(ctx, userID)
		default:
			reply = helpText
		}
	} else {
		var ok bool
		if reply, ok = h.Join.HandleText(ctx, userID, text); !ok {
			return
		}
	}

	if err := h.TG.SendMessage(chatID, reply); err != nil {
		log.Printf("[bot][reply][err] chatID=%d: %v", chatID, err)
	}
}

// Serve handles queued updates sequentially until ctx is done.
func (h *BotHandler) Serve(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case up, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, up)
		}
	}
}
