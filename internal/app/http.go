package app

import (
	"context"

	"github.com/semtetteh/semsterapp/internal/config"
	"github.com/semtetteh/semsterapp/internal/directory"
	"github.com/semtetteh/semsterapp/internal/profile"
	"github.com/semtetteh/semsterapp/internal/resolver"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	profileStore := profile.NewPostgresStore(infra.DB)
	accountDirectory := directory.NewPostgresDirectory(infra.DB)

	resolverHandler := resolver.NewHandler(profileStore, accountDirectory)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(resolver.CORS())
	router.Use(resolver.Recovery())

	resolverHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
