package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/stz7750/next-chat-app/internal/auth/credentials"
	"github.com/stz7750/next-chat-app/internal/auth/handler"
	"github.com/stz7750/next-chat-app/internal/auth/provider"
	"github.com/stz7750/next-chat-app/internal/auth/provider/github"
	"github.com/stz7750/next-chat-app/internal/auth/provider/google"
	"github.com/stz7750/next-chat-app/internal/auth/resolver"
	"github.com/stz7750/next-chat-app/internal/config"
	"github.com/stz7750/next-chat-app/internal/middleware"
	"github.com/stz7750/next-chat-app/internal/session"
	"github.com/stz7750/next-chat-app/internal/user"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	userStore := user.NewPGStore(infra.DB)
	credentialService := credentials.NewService(userStore)
	identityResolver := resolver.NewStoreResolver(userStore)

	issuer := session.NewIssuer(cfg.SessionSecret, cfg.SessionTTL)
	revoker := session.NewRevoker(infra.Redis.Client)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	githubProvider, err := github.New(
		cfg.GithubClientID,
		cfg.GithubClientSecret,
		cfg.GithubRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(
		googleProvider,
		githubProvider,
	)

	authHandler := handler.NewHandler(
		registry,
		credentialService,
		identityResolver,
		issuer,
		revoker,
	)

	guard, err := middleware.NewRouteGuard(
		cfg.ProtectedPaths,
		cfg.SignInPath,
		issuer,
		revoker,
	)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// The guard sits in front of everything; paths outside the
	// protected pattern set pass through untouched.
	router.Use(middleware.GinGuard(guard))

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected Pages
	// ----------------------------

	router.GET("/conversations", func(c *gin.Context) {
		userID, _ := middleware.UserIDFromContext(c.Request.Context())
		c.JSON(200, gin.H{"user_id": userID})
	})

	router.GET("/user/:id", func(c *gin.Context) {
		c.JSON(200, gin.H{"profile": c.Param("id")})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
