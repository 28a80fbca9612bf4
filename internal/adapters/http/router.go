package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/adapters/ws"
	"github.com/terminalboard/server/internal/auth"
	"github.com/terminalboard/server/internal/config"
)

// ClientTokenMiddleware pins a uuid cookie to each browser so HTTP
// requests from one client are correlatable in logs. The websocket layer
// mints its own per-connection ids.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, h *Handlers, wsCtl *ws.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("TerminalBoardSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/health", h.Health)
	api.GET("/chat/messages", h.ListMessages)
	api.GET("/gifs/search", h.SearchGifs)
	api.GET("/gifs/trending", h.TrendingGifs)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", auth.RequireAuth(h.Tokens), h.Me)

	admin := api.Group("/admin", auth.RequireAuth(h.Tokens), auth.RequireAdmin())
	admin.GET("/me", h.Me)
	admin.GET("/messages", h.AdminListMessages)
	admin.DELETE("/messages/:id", h.AdminDeleteMessage)
	admin.GET("/users", h.AdminListUsers)

	api.GET("/ws/chat", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws chat endpoint hit")
		wsCtl.HandleChat(ctx, c)
	})

	return r
}
