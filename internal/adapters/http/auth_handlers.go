package http

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/adapters/store"
	"github.com/terminalboard/server/internal/auth"
	"github.com/terminalboard/server/internal/domain"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "INVALID PAYLOAD"})
		return
	}

	username := strings.TrimSpace(req.Username)
	if err := domain.ValidateUsername(username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": strings.ToUpper(err.Error())})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "INVALID EMAIL"})
		return
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": strings.ToUpper(err.Error())})
		return
	}

	user, err := h.Users.Create(c.Request.Context(), domain.User{
		Username:     username,
		Email:        email,
		Role:         domain.RoleUser,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			c.JSON(http.StatusConflict, gin.H{"message": "USERNAME OR EMAIL TAKEN"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("register user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error creating account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "INVALID PAYLOAD"})
		return
	}

	user, err := h.Users.FindByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "INVALID CREDENTIALS"})
		return
	}
	if !h.Hasher.Verify(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "INVALID CREDENTIALS"})
		return
	}

	token, err := h.Tokens.Generate(user)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error signing token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handlers) Me(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "NO TOKEN PROVIDED"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       claims.UserID,
		"username": claims.Username,
		"role":     claims.Role,
	})
}
