package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stz7750/next-chat-app/internal/auth/credentials"
	"github.com/stz7750/next-chat-app/internal/logger"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login is the credential sign-in entry point. It answers inline with
// {ok, error?} instead of redirecting so the auth form can react
// in-page. Every authentication failure collapses into the same
// generic message: the wire must not reveal whether the account
// exists, lacks a password, or the password was wrong.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "invalid request",
		})
		return
	}

	u, err := h.credentialService.Authenticate(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		if !credentials.IsAuthFailure(err) {
			// Store failure, not an auth decision.
			logger.Error("credential lookup failed", map[string]any{
				"error": err.Error(),
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"ok":    false,
				"error": "internal error",
			})
			return
		}

		logger.Info("credential login rejected", map[string]any{
			"reason": err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"ok":    false,
			"error": "invalid credentials",
		})
		return
	}

	if _, err := h.issueSession(c, u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "session error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
