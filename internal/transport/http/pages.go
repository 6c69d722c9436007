package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	pageIndex   = "index.html"
	pageMessage = "message.html"
	pageHistory = "history.html"
	pageSuccess = "success.html"
	pageError   = "error.html"

	contentTypeHTML = "text/html; charset=utf-8"
)

// PageHandlers serves the static pages and assets.
type PageHandlers struct {
	templatesDir string
	staticDir    string
	log          *zerolog.Logger
}

// NewPageHandlers creates page handlers rooted at the given directories.
func NewPageHandlers(templatesDir, staticDir string, logger *zerolog.Logger) *PageHandlers {
	return &PageHandlers{
		templatesDir: templatesDir,
		staticDir:    staticDir,
		log:          logger,
	}
}

// Index serves the landing page.
// GET /
func (h *PageHandlers) Index(c *gin.Context) {
	h.servePage(c, pageIndex)
}

// MessageForm serves the submission form.
// GET /message.html
func (h *PageHandlers) MessageForm(c *gin.Context) {
	h.servePage(c, pageMessage)
}

// Success serves the confirmation page.
// GET /success.html
func (h *PageHandlers) Success(c *gin.Context) {
	h.servePage(c, pageSuccess)
}

// NotFound serves the error page with 404. When the error page itself is
// missing a plain-text body is sent instead.
func (h *PageHandlers) NotFound(c *gin.Context) {
	data, err := os.ReadFile(filepath.Join(h.templatesDir, pageError))
	if err != nil {
		h.log.Warn().Err(err).Msg("error page unavailable")
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	c.Data(http.StatusNotFound, contentTypeHTML, data)
}

// Static serves a file from the asset directory.
// GET /static/*filepath
func (h *PageHandlers) Static(c *gin.Context) {
	path, ok := resolveWithin(h.staticDir, c.Param("filepath"))
	if !ok {
		h.NotFound(c)
		return
	}

	data, err := readRegularFile(path)
	if err != nil {
		h.log.Debug().Err(err).Str("path", path).Msg("static asset not found")
		h.NotFound(c)
		return
	}
	c.Data(http.StatusOK, assetContentType(path, data), data)
}

func (h *PageHandlers) servePage(c *gin.Context, name string) {
	data, err := readRegularFile(filepath.Join(h.templatesDir, name))
	if err != nil {
		h.log.Warn().Err(err).Str("page", name).Msg("page not found")
		h.NotFound(c)
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, data)
}

// resolveWithin joins name onto dir, refusing anything that escapes dir.
func resolveWithin(dir, name string) (string, bool) {
	cleaned := filepath.Clean("/" + strings.TrimPrefix(filepath.ToSlash(name), "/"))
	if cleaned == "/" {
		return "", false
	}
	return filepath.Join(dir, filepath.FromSlash(cleaned)), true
}

var errNotRegular = errors.New("not a regular file")

func readRegularFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, errNotRegular
	}
	return os.ReadFile(path)
}

func assetContentType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".png":
		return "image/png"
	}
	return mimetype.Detect(data).String()
}
