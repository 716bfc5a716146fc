package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"

	"github.com/hackernews-go/app/internal/pubsub"
	"github.com/hackernews-go/app/internal/service"
)

type Router struct {
	svc service.Service
	hub *pubsub.Hub

	// pageSize is the feed page size applied when the query carries
	// no explicit first; zero disables the default.
	pageSize int64
}

// Config carries the router's cross-cutting settings.
type Config struct {
	JWTSecret []byte
	PageSize  int64
}

type apiValidator struct {
	v *validator.Validate
}

func (av *apiValidator) Validate(i interface{}) error {
	return av.v.Struct(i)
}

// NewRouter builds the echo instance: open routes for health, signup,
// login and the feed; token-guarded routes for posting, voting and the
// subscription socket.
func NewRouter(svc service.Service, hub *pubsub.Hub, cfg Config) *echo.Echo {
	h := &Router{svc: svc, hub: hub, pageSize: cfg.PageSize}

	r := echo.New()
	r.HideBanner = true
	r.Validator = &apiValidator{v: validator.New()}
	r.Use(middleware.Recover())
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}\n",
	}))

	router := r.Group("/api")
	router.GET("/health", h.healthCheckHandler)
	router.POST("/signup", h.signupHandler)
	router.POST("/login", h.loginHandler)
	router.GET("/feed", h.feedHandler)

	authed := router.Group("")
	authed.Use(middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey: cfg.JWTSecret,
		ErrorHandler: func(error) error {
			// uniform failure for absent, malformed and expired tokens
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		},
	}))
	{
		authed.GET("/link/:id", h.linkByIdHandler)
		authed.POST("/link/new", h.newLinkHandler)
		authed.POST("/link/vote", h.voteHandler)
		authed.GET("/subscribe", h.subscribeHandler)
	}

	return r
}
