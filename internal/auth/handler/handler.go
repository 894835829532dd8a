package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stz7750/next-chat-app/internal/auth/credentials"
	"github.com/stz7750/next-chat-app/internal/auth/provider"
	"github.com/stz7750/next-chat-app/internal/auth/resolver"
	"github.com/stz7750/next-chat-app/internal/logger"
	"github.com/stz7750/next-chat-app/internal/session"
)

// LandingPath is where a fresh session lands after authentication.
const LandingPath = "/conversations"

type Handler struct {
	providers         *provider.Registry
	credentialService *credentials.Service
	resolver          resolver.Resolver
	issuer            *session.Issuer
	revoker           *session.Revoker
}

func NewHandler(
	registry *provider.Registry,
	credentialService *credentials.Service,
	resolver resolver.Resolver,
	issuer *session.Issuer,
	revoker *session.Revoker,
) *Handler {
	return &Handler{
		providers:         registry,
		credentialService: credentialService,
		resolver:          resolver,
		issuer:            issuer,
		revoker:           revoker,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/session", h.Session)
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)
	r.POST("/auth/logout", h.Logout)
}

// issueSession mints the session token and hands it to the browser.
// Credential and provider logins both end up here, so every session
// looks the same downstream.
func (h *Handler) issueSession(c *gin.Context, userID string) (session.Claims, error) {
	token, claims, err := h.issuer.Issue(userID)
	if err != nil {
		return session.Claims{}, err
	}

	session.SetCookie(c.Writer, token, claims.ExpiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return claims, nil
}

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	// Provider-side error: the attempt failed before any identity was
	// produced. Bounce back to the sign-in surface for a fresh flow.
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, "/")
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	identity, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		codeVerifier,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	u, err := h.resolver.Resolve(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	claims, err := h.issueSession(c, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	logger.Info("login success", map[string]any{
		"user_id":  u.ID,
		"provider": providerName,
		"expires":  claims.ExpiresAt.Format(time.RFC3339),
	})

	c.Redirect(http.StatusFound, LandingPath)
}

// Session reports whether the request carries a live session. The auth
// surface polls this to bounce already-authenticated callers away.
func (h *Handler) Session(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	claims, err := h.issuer.Verify(cookie.Value)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	if h.revoker != nil {
		revoked, err := h.revoker.IsRevoked(c.Request.Context(), claims.TokenID)
		if err != nil || revoked {
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user_id":       claims.UserID,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	// Revoke is best-effort; the cookie is cleared regardless.
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		if claims, err := h.issuer.Verify(cookie.Value); err == nil && h.revoker != nil {
			if err := h.revoker.Revoke(c.Request.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
				logger.Warn("revoke failed", map[string]any{
					"error": err.Error(),
				})
			}
		}
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Idempotent response
	c.Status(http.StatusNoContent)
}
