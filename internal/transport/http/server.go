package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/service/board"
)

// NewServer builds the request server: pages, static assets, submissions and history.
func NewServer(svc *board.Service, cfg config.HTTPConfig, logger *zerolog.Logger) *stdhttp.Server {
	pages := NewPageHandlers(cfg.TemplatesDir, cfg.StaticDir, logger)
	boardHandlers := NewBoardHandlers(svc, pages, logger)

	router := gin.New()
	// Near-miss paths get the error page, not a redirect.
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/", pages.Index)
	router.POST("/", SubmitLimitMiddleware(newRateLimiter(cfg.SubmitLimit), logger), boardHandlers.Submit)
	router.GET("/message.html", pages.MessageForm)
	router.GET("/history.html", boardHandlers.History)
	router.GET("/success.html", pages.Success)
	router.GET("/static/*filepath", pages.Static)
	router.NoRoute(pages.NotFound)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
