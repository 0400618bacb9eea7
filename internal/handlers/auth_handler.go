package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"teamjoin/internal/middleware"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	username     string
	passwordHash string
	secret       []byte
	ttl          time.Duration
}

func NewAuthHandler(username, passwordHash string, secret []byte, ttl time.Duration) *AuthHandler {
	return &AuthHandler{username: username, passwordHash: passwordHash, secret: secret, ttl: ttl}
}

// @Summary      Вход администратора
// @Description  Проверяет логин и bcrypt-хеш пароля, возвращает JWT
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      handlers.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	username := strings.TrimSpace(req.Username)
	log.Printf("[auth][login] attempt username=%q", username)

	if subtle.ConstantTimeCompare([]byte(username), []byte(h.username)) != 1 {
		log.Printf("[auth][login] unknown username=%q", username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)); err != nil {
		log.Printf("[auth][login] bcrypt mismatch username=%q: err=%v", username, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, exp, err := middleware.IssueToken(h.secret, username, h.ttl)
	if err != nil {
		log.Printf("[auth][login] sign token failed: err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	log.Printf("[auth][login] success username=%q took=%s", username, time.Since(start).Truncate(time.Millisecond))

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"expires_at":   exp.UTC().Format(time.RFC3339),
	})
}
