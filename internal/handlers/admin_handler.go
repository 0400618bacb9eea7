package handlers

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"teamjoin/internal/models"
	"teamjoin/internal/pdf"
	"teamjoin/internal/repositories"
	"teamjoin/internal/utils"
)

type AdminHandler struct {
	Members repositories.MemberRepository
	Invites repositories.InviteRepository
	Reports pdf.Generator
	now     func() time.Time
}

func NewAdminHandler(members repositories.MemberRepository, invites repositories.InviteRepository, reports pdf.Generator) *AdminHandler {
	return &AdminHandler{Members: members, Invites: invites, Reports: reports, now: time.Now}
}

type CreateInviteRequest struct {
	Link   string `json:"link" binding:"required"`
	Expiry string `json:"expiry" binding:"required"`
}

// @Summary      Проверка живости
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (h *AdminHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Список участников
// @Tags         Members
// @Produce      json
// @Success      200  {array}   models.MemberRecord
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /members [get]
func (h *AdminHandler) ListMembers(c *gin.Context) {
	list, err := h.Members.List(c.Request.Context())
	if err != nil {
		log.Printf("[admin][members] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}
	if list == nil {
		list = []models.MemberRecord{}
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Список инвайтов
// @Description  Инвайты из invites.txt с признаком active на сегодня
// @Tags         Invites
// @Produce      json
// @Success      200  {array}   models.InviteStatus
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /invites [get]
func (h *AdminHandler) ListInvites(c *gin.Context) {
	statuses, err := h.inviteStatuses(c)
	if err != nil {
		log.Printf("[admin][invites] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invites"})
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// @Summary      Добавить инвайт
// @Tags         Invites
// @Accept       json
// @Produce      json
// @Param        invite  body      handlers.CreateInviteRequest  true  "Ссылка и срок DD-MM-YY"
// @Success      201     {object}  models.InviteStatus
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Security     BearerAuth
// @Router       /invites [post]
func (h *AdminHandler) CreateInvite(c *gin.Context) {
	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv := models.Invite{Link: strings.TrimSpace(req.Link), Expiry: strings.TrimSpace(req.Expiry)}
	if err := utils.ValidateStruct(inv); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !strings.HasPrefix(inv.Link, "http://") && !strings.HasPrefix(inv.Link, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "link must be http(s)"})
		return
	}
	if _, err := inv.ExpiryDate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expiry must be DD-MM-YY"})
		return
	}
	if err := h.Invites.Append(c.Request.Context(), inv); err != nil {
		log.Printf("[admin][invites] append failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save invite"})
		return
	}
	log.Printf("[admin][invites] added link=%s expiry=%s by=%s", inv.Link, inv.Expiry, c.GetString("admin"))
	c.JSON(http.StatusCreated, models.InviteStatus{Invite: inv, Active: inv.ActiveOn(h.now())})
}

// @Summary      PDF-отчёт по участникам
// @Tags         Reports
// @Produce      application/pdf
// @Success      200  {file}    file
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /reports/members.pdf [get]
func (h *AdminHandler) MembersReport(c *gin.Context) {
	members, err := h.Members.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}
	invites, err := h.inviteStatuses(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invites"})
		return
	}
	path, err := h.Reports.GenerateMembersReport(members, invites, h.now())
	if err != nil {
		log.Printf("[admin][report] generate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (h *AdminHandler) inviteStatuses(c *gin.Context) ([]models.InviteStatus, error) {
	invites, err := h.Invites.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	today := h.now()
	out := make([]models.InviteStatus, 0, len(invites))
	for _, inv := range invites {
		out = append(out, models.InviteStatus{Invite: inv, Active: inv.ActiveOn(today)})
	}
	return out, nil
}
