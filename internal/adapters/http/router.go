package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/adapters/signal"
	"github.com/lofiflow/lounge/internal/app"
	"github.com/lofiflow/lounge/internal/config"
	"github.com/lofiflow/lounge/internal/core"
	"github.com/lofiflow/lounge/internal/domain"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins an anonymous browser-session token in the
// `ct` cookie; the registry maps it to a stable identity.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, svc *app.Service) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("LoungeSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Bool("chat", svc.Enabled).Msg("router setup")

	api := r.Group("/api")

	api.GET("/chat/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"enabled": svc.Enabled})
	})

	// Point lookup for the join form: lets the page validate a code
	// before opening the socket.
	api.GET("/rooms/:code", func(c *gin.Context) {
		roomLookup(c, svc)
	})

	ctl := signal.NewChatWSController(svc, cfg)
	api.GET("/ws/chat", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("token", c.GetString("client_token")).Msg("ws chat endpoint hit")
		ctl.HandleChat(ctx, c)
	})

	return r
}

func roomLookup(c *gin.Context, svc *app.Service) {
	if !svc.Enabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backend_unavailable"})
		return
	}
	code, err := domain.ParseRoomCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_code"})
		return
	}
	room, err := svc.Lookup(c.Request.Context(), code)
	if errors.Is(err, core.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":       room.Code,
		"name":       room.Name,
		"created_at": room.CreatedAt,
	})
}
