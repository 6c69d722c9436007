package http

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/service/board"
)

// BoardHandlers provides the submission and history endpoints.
type BoardHandlers struct {
	service *board.Service
	pages   *PageHandlers
	log     *zerolog.Logger
}

// NewBoardHandlers creates a new board handlers instance.
func NewBoardHandlers(svc *board.Service, pages *PageHandlers, logger *zerolog.Logger) *BoardHandlers {
	return &BoardHandlers{
		service: svc,
		pages:   pages,
		log:     logger,
	}
}

// SubmitForm is the form-encoded submission body.
type SubmitForm struct {
	Username string `form:"username" binding:"required"`
	Message  string `form:"message" binding:"required"`
}

// HistoryPage is the data passed to the history template.
type HistoryPage struct {
	Messages board.View
}

// Submit stores a message and redirects to the confirmation page.
// POST /
func (h *BoardHandlers) Submit(c *gin.Context) {
	var form SubmitForm
	if err := c.ShouldBindWith(&form, binding.FormPost); err != nil {
		h.log.Debug().Err(err).Msg("invalid submission")
		c.String(http.StatusBadRequest, "Invalid form data")
		return
	}

	if _, err := h.service.Submit(c.Request.Context(), form.Username, form.Message); err != nil {
		if errors.Is(err, core.ErrInvalidSubmission) {
			c.String(http.StatusBadRequest, "Invalid form data")
			return
		}
		h.log.Error().Err(err).Str("username", form.Username).Msg("failed to save message")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.Redirect(http.StatusFound, "/"+pageSuccess)
}

// History renders every stored message keyed by HH:MM.
// GET /history.html
func (h *BoardHandlers) History(c *gin.Context) {
	tmpl, err := template.ParseFiles(filepath.Join(h.pages.templatesDir, pageHistory))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.log.Warn().Err(err).Msg("history template unavailable")
			h.pages.NotFound(c)
			return
		}
		h.log.Error().Err(err).Msg("failed to parse history template")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	view := h.service.History(c.Request.Context())
	h.log.Debug().Interface("messages", view).Msg("rendering history")

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, HistoryPage{Messages: view}); err != nil {
		h.log.Error().Err(err).Msg("failed to render history")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, buf.Bytes())
}
