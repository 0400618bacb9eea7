package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type updateParser interface {
	ParseWebhook(r *http.Request) (*tgbotapi.Update, error)
}

// IntegrationsHandler принимает вебхук Telegram и ставит апдейт в очередь:
// ответ отдаём сразу, попытки вступления идут минутами.
type IntegrationsHandler struct {
	TG    updateParser
	Queue chan<- tgbotapi.Update
}

func NewIntegrationsHandler(tg updateParser, queue chan<- tgbotapi.Update) *IntegrationsHandler {
	return &IntegrationsHandler{TG: tg, Queue: queue}
}

func (h *IntegrationsHandler) Webhook(c *gin.Context) {
	if h.TG == nil {
		log.Printf("[TG:WEBHOOK] telegram disabled. Return 200.")
		c.Status(http.StatusOK)
		return
	}
	up, err := h.TG.ParseWebhook(c.Request)
	if err != nil {
		log.Printf("[TG:WEBHOOK] bad update: %v", err)
		c.Status(http.StatusOK)
		return
	}
	select {
	case h.Queue <- *up:
	default:
		log.Printf("[TG:WEBHOOK] queue full, dropping update_id=%d", up.UpdateID)
	}
	c.Status(http.StatusOK)
}
