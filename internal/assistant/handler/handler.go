// Package handler provides the assistant's HTTP handlers.
package handler

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/naughty-assistant/internal/assistant/biz"
	"github.com/kart-io/naughty-assistant/internal/assistant/store"
	"github.com/kart-io/naughty-assistant/internal/pkg/httputils"
	"github.com/kart-io/naughty-assistant/pkg/errors"
	"github.com/kart-io/naughty-assistant/pkg/plugin"
	"github.com/kart-io/naughty-assistant/pkg/utils/response"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ChatRouter answers chat text.
type ChatRouter interface {
	Route(ctx context.Context, text string, naughty bool) (string, error)
}

// Ingester runs uploads through the intake pipeline.
type Ingester interface {
	Ingest(ctx context.Context, filename string, r io.Reader) (*biz.IngestResult, error)
}

// Searcher renders knowledge search results.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// UploadLister lists recorded uploads.
type UploadLister interface {
	Recent(ctx context.Context, limit int) ([]store.Upload, error)
}

// ModelStatus reports the model gateway state.
type ModelStatus interface {
	Available() bool
	Model() string
}

// Config wires a Handler. Plugins and Uploads may be nil.
type Config struct {
	Chat          ChatRouter
	Intake        Ingester
	Search        Searcher
	Model         ModelStatus
	Plugins       *plugin.Registry
	Uploads       UploadLister
	MaxUploadSize int64
}

// Handler serves the assistant API.
type Handler struct {
	cfg Config
}

// New creates a Handler.
func New(cfg Config) *Handler {
	return &Handler{cfg: cfg}
}

// ChatRequest is the /chat body.
type ChatRequest struct {
	Message     string `json:"message"`
	NaughtyMode bool   `json:"naughty_mode"`
}

// Chat routes a message to a feature or the model.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}

	reply, err := h.cfg.Chat.Route(c.Request.Context(), req.Message, req.NaughtyMode)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Text(reply))
}

// Upload accepts a multipart "file" and runs it through intake.
func (h *Handler) Upload(c *gin.Context) {
	if h.cfg.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadSize)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			httputils.WriteResponse(c, errors.ErrRequestTooLarge.WithMessagef("File exceeds %d bytes", tooLarge.Limit), nil)
			return
		}
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("multipart field \"file\" is required"), nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		httputils.WriteResponse(c, errors.ErrIOFailure.WithMessagef("Oops, something broke while handling that file: %v", err), nil)
		return
	}
	defer f.Close()

	res, err := h.cfg.Intake.Ingest(c.Request.Context(), fh.Filename, f)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, &response.Response{
		Response:      res.Response,
		KnowledgeBase: res.KnowledgeBase,
		ImagePath:     res.ImagePath,
	})
}

// SearchRequest is the /semantic_search body.
type SearchRequest struct {
	Query string `json:"query"`
}

// SemanticSearch searches the knowledge base.
func (h *Handler) SemanticSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}

	results, err := h.cfg.Search.Search(c.Request.Context(), req.Query)
	if err != nil {
		logger.Errorw("Semantic search failed", "error", err.Error())
		httputils.WriteResponse(c, errors.ErrInternal.WithCause(err).WithMessagef("Error performing semantic search: %v", err), nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Text("Search results, sexy: "+results+" 🔍"))
}

// Plugins lists the registered plugins.
func (h *Handler) Plugins(c *gin.Context) {
	infos := []plugin.Info{}
	if h.cfg.Plugins != nil {
		infos = h.cfg.Plugins.List()
	}
	c.JSON(http.StatusOK, gin.H{"plugins": infos})
}

// Uploads lists recent intake records. ?limit= defaults to 20, max 100.
func (h *Handler) Uploads(c *gin.Context) {
	if h.cfg.Uploads == nil {
		httputils.WriteResponse(c, errors.ErrNotFound.WithMessage("Upload ledger is disabled"), nil)
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("limit must be a positive integer"), nil)
			return
		}
		limit = min(n, maxListLimit)
	}

	uploads, err := h.cfg.Uploads.Recent(c.Request.Context(), limit)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}

// Healthz reports liveness and whether the model is loaded. The service
// stays up without a model.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_loaded": h.cfg.Model.Available(),
		"model":        h.cfg.Model.Model(),
	})
}
