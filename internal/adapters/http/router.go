package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Pairs/internal/adapters/signal"
	"github.com/dkeye/Pairs/internal/app/orch"
	"github.com/dkeye/Pairs/internal/config"
	"github.com/dkeye/Pairs/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
)

const clientTokenKey = "ct"

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware gives every browser a stable token, kept in the
// session cookie, used to correlate its connections in logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			sess.Set(clientTokenKey, token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type categoryDTO struct {
	Name    string   `json:"name"`
	Preview []string `json:"preview"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("PairsSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.GET("/stats", func(c *gin.Context) {
		st := o.Rooms.Stats()
		c.JSON(http.StatusOK, gin.H{
			"connections": o.Registry.Count(),
			"rooms":       st.Rooms,
			"waiting":     st.Waiting,
			"phases":      st.Phases,
		})
	})

	api.GET("/categories", func(c *gin.Context) {
		out := make([]categoryDTO, 0, len(domain.Categories()))
		for _, cat := range domain.Categories() {
			symbols, err := cat.Symbols()
			if err != nil {
				continue
			}
			dto := categoryDTO{Name: string(cat)}
			for _, s := range symbols[:3] {
				dto.Preview = append(dto.Preview, string(s))
			}
			out = append(out, dto)
		}
		c.JSON(http.StatusOK, gin.H{"categories": out})
	})

	// GET /api/invite.png: QR code of the public URL, for a second player on a phone
	api.GET("/invite.png", func(c *gin.Context) {
		if cfg.PublicURL == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "public_url is not configured"})
			return
		}
		png, err := qrcode.Encode(cfg.PublicURL, qrcode.Medium, 256)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("encode invite qr")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "qr encoding failed"})
			return
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, "image/png", png)
	})

	ctrl := signal.NewSignalWSController(o, signal.OptionsFromConfig(cfg))
	api.GET("/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
