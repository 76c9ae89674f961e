package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
	"github.com/TurnIfCode/backend-gogo/pkg/imageingest"
	"github.com/TurnIfCode/backend-gogo/pkg/live"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
	"github.com/TurnIfCode/backend-gogo/pkg/readmodel"
	"github.com/TurnIfCode/backend-gogo/pkg/topup"
	"github.com/TurnIfCode/backend-gogo/store"
)

var errMissingAuth = apperr.New(apperr.Unauthenticated, "unauthenticated", "you are not logged in, please log in first")

// bodySlack is the room left for the JSON envelope around an image payload.
const bodySlack = 64 << 10

type photoStore interface {
	Replace(ctx context.Context, userID, image, by string, now time.Time) (models.UserPhoto, error)
}

// app carries the collaborators of every handler.
type app struct {
	cfg     Config
	db      *gorm.DB
	tokens  *tokenIssuer
	images  *imageingest.Ingestor
	photos  photoStore
	topups  *topup.Service
	wallets *readmodel.WalletView
	coins   *readmodel.CoinCatalog
	lives   *live.Service
}

func newApp(cfg Config, db *gorm.DB) *app {
	images := imageingest.New(cfg.Image, cfg.IngestWorkers)
	catalog := store.NewCatalogStore(db)
	return &app{
		cfg:     cfg,
		db:      db,
		tokens:  newTokenIssuer(cfg),
		images:  images,
		photos:  store.NewPhotoStore(db),
		topups:  topup.NewService(store.NewTopupStore(db), catalog, images, topup.Options{BankMode: cfg.BankMode}),
		wallets: readmodel.NewWalletView(catalog),
		coins:   readmodel.NewCoinCatalog(catalog),
		lives:   live.NewService(store.NewLiveStore(db), cfg.LivePageSize),
	}
}

func (a *app) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware())

	r.GET("/healthz", a.healthHandler)

	api := r.Group("/api")
	api.POST("/register", a.registerHandler)
	api.POST("/login", a.loginHandler)
	api.POST("/refresh", a.refreshHandler)
	api.POST("/revoke_refresh", a.revokeRefreshHandler)

	authGroup := api.Group("")
	authGroup.Use(a.jwtAuthMiddleware())
	authGroup.GET("/me", a.meHandler)
	authGroup.GET("/profile", a.profileHandler)
	imageBody := limitBody(int64(a.images.Config().MaxEncodedLen) + bodySlack)
	authGroup.PUT("/profile/photo", imageBody, a.changePhotoHandler)

	authGroup.GET("/wallet/:user_id", a.walletHandler)
	authGroup.GET("/coin", a.coinListHandler)

	authGroup.POST("/topup", a.createTopupHandler)
	authGroup.GET("/topup-list", a.listTopupHandler)
	authGroup.POST("/topup/:id/cancel", a.cancelTopupHandler)
	authGroup.POST("/topup/:id/upload", imageBody, a.uploadTopupProofHandler)
	authGroup.POST("/topup/:id/approve", a.approveTopupHandler)

	authGroup.GET("/live-stream/list", a.liveListHandler)
	authGroup.POST("/live-stream/start", a.liveStartHandler)
	authGroup.POST("/live-stream/end", a.liveEndHandler)
	authGroup.POST("/live-stream/:id/join", a.liveJoinHandler)
	authGroup.POST("/live-stream/:id/leave", a.liveLeaveHandler)
	authGroup.GET("/live-stream/:id/viewers", a.liveViewersHandler)
	return r
}

// jwtAuthMiddleware resolves the bearer token to the caller's identity. The
// claims are trusted; no database lookup happens here.
func (a *app) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") || len(authHeader) < 8 {
			respondErr(c, errMissingAuth)
			return
		}
		claims, err := a.tokens.parse(strings.TrimSpace(authHeader[7:]))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Set("userID", claims.Subject)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// limitBody caps the request body at n bytes. Binding a larger body fails
// with imageingest.ErrTooLarge before it is buffered.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// actorFromContext returns the identity set by jwtAuthMiddleware.
func actorFromContext(c *gin.Context) topup.Actor {
	return topup.Actor{
		ID:       c.GetString("userID"),
		Username: c.GetString("username"),
		Role:     c.GetString("role"),
	}
}

func (a *app) healthHandler(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		respondErr(c, apperr.WrapInternal("database unavailable", err))
		return
	}
	respondOK(c, http.StatusOK, "ok", nil)
}
