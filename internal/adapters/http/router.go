package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/telecare/signaling/internal/adapters/signal"
	"github.com/telecare/signaling/internal/auth"
	"github.com/telecare/signaling/internal/config"
	"github.com/telecare/signaling/internal/media"
)

func SetupRouter(ctx context.Context, cfg *config.Config, gw *signal.Gateway, issuer *media.Issuer, tokens *auth.Decoder) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		gw.HandleSignal(ctx, c)
	})

	// ICE server list for clients establishing the peer-to-peer leg.
	api.GET("/rtc/config", func(c *gin.Context) {
		servers := make([]gin.H, 0, len(cfg.StunURLs))
		for _, u := range cfg.StunURLs {
			servers = append(servers, gin.H{"urls": u})
		}
		c.JSON(http.StatusOK, gin.H{"iceServers": servers})
	})

	api.POST("/video/token", mediaTokenHandler(issuer, tokens))

	return r
}

// mediaTokenHandler serves the managed-media deployment: it mints a provider
// token for the authenticated caller. Without provider credentials the
// endpoint reports the service as unconfigured.
func mediaTokenHandler(issuer *media.Issuer, tokens *auth.Decoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
			return
		}
		identity, err := tokens.Decode(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
			return
		}

		var body struct {
			Name string `json:"name"`
		}
		_ = c.ShouldBindJSON(&body) // name is optional display metadata

		token, err := issuer.UserToken(identity.UserID, body.Name, identity.Role)
		if errors.Is(err, media.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to generate token: service not configured"})
			return
		}
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("minting media token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":   token,
			"api_key": issuer.APIKey(),
			"user_id": identity.UserID,
		})
	}
}
