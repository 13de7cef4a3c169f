package links

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/httpx"
)

// HTTPCreateLinkRequest represents the JSON request body for creating a link.
type HTTPCreateLinkRequest struct {
	TargetURL  string `json:"targetUrl"`
	CustomCode string `json:"customCode,omitempty"`
}

// LinkResponse is the JSON form of a Link.
type LinkResponse struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	TargetURL     string     `json:"targetUrl"`
	ShortURL      string     `json:"shortUrl"`
	TotalClicks   int64      `json:"totalClicks"`
	LastClickedAt *time.Time `json:"lastClickedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// DeleteLinkResponse is returned by both delete routes.
type DeleteLinkResponse struct {
	OK bool `json:"ok"`
}

// Observer is notified of issuance and redirect outcomes. The metrics
// package provides the production implementation.
type Observer interface {
	LinkCreated(custom bool)
	// LinkResolved reports a redirect or an unknown code. Store failures
	// are not reported.
	LinkResolved(found bool)
}

type nopObserver struct{}

func (nopObserver) LinkCreated(bool)  {}
func (nopObserver) LinkResolved(bool) {}

// Handler provides HTTP handlers for the link service.
type Handler struct {
	service  Service
	logger   *slog.Logger
	baseURL  string
	observer Observer
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service  Service
	Logger   *slog.Logger
	BaseURL  string // used to build shortUrl, e.g. "https://sho.rt"
	Observer Observer
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Handler{
		service:  cfg.Service,
		logger:   logger,
		baseURL:  cfg.BaseURL,
		observer: observer,
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

func (h *Handler) toResponse(link Link) LinkResponse {
	return LinkResponse{
		ID:            link.ID.String(),
		Code:          link.Code,
		TargetURL:     link.TargetURL,
		ShortURL:      h.baseURL + "/" + link.Code,
		TotalClicks:   link.TotalClicks,
		LastClickedAt: link.LastClickedAt,
		CreatedAt:     link.CreatedAt,
	}
}

// ListLinks handles GET /links.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	all, err := h.service.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, h.requestLogger(r), w, err, "Unable to list links at this time.")
		return
	}

	resp := make([]LinkResponse, 0, len(all))
	for _, link := range all {
		resp = append(resp, h.toResponse(link))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// CreateLink handles POST /links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[HTTPCreateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if req.TargetURL == "" {
		logger.WarnContext(ctx, "request validation failed", "error", "missing targetUrl")
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "targetUrl is required")
		return
	}

	link, err := h.service.Create(ctx, CreateLinkRequest{
		TargetURL:  req.TargetURL,
		CustomCode: req.CustomCode,
	})
	if err != nil {
		h.writeServiceError(ctx, logger, w, err, "Unable to create short link at this time. Please try again.")
		return
	}

	custom := req.CustomCode != ""
	h.observer.LinkCreated(custom)
	logger.InfoContext(ctx, "link created",
		"link_id", link.ID.String(),
		"code", link.Code,
		"custom_code", custom,
	)

	httpx.WriteJSON(w, http.StatusCreated, h.toResponse(link))
}

// codeParam returns the {code} path segment decoded. chi matches on the
// escaped path whenever the request carries one, so "/a%2Cb" yields "a%2Cb"
// until unescaped here.
func codeParam(r *http.Request) (string, error) {
	code := chi.URLParam(r, "code")
	if r.URL.RawPath == "" {
		return code, nil
	}
	return url.PathUnescape(code)
}

// GetLink handles GET /links/{code}. It never records a click.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code, err := codeParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "link not found")
		return
	}

	link, err := h.service.Get(ctx, code)
	if err != nil {
		h.writeServiceError(ctx, h.requestLogger(r), w, err, "Unable to load this link at this time.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.toResponse(link))
}

// DeleteLink handles DELETE /links/{code}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	code, err := codeParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "link not found")
		return
	}

	if err := h.service.Delete(ctx, code); err != nil {
		h.writeServiceError(ctx, logger, w, err, "Unable to delete this link at this time.")
		return
	}

	logger.InfoContext(ctx, "link deleted", "code", code)
	httpx.WriteJSON(w, http.StatusOK, DeleteLinkResponse{OK: true})
}

// DeleteLinkByQuery handles DELETE /links?code=X. Unlike DeleteLink, every
// service failure other than a missing code is reported as 500, including an
// unknown code.
func (h *Handler) DeleteLinkByQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	code := r.URL.Query().Get("code")
	if code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "code is required")
		return
	}

	if err := h.service.Delete(ctx, code); err != nil {
		logger.ErrorContext(ctx, "delete by query failed",
			"code", code,
			"error", err.Error(),
			"error_kind", errx.KindOf(err),
			"operation", errx.OpOf(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Unable to delete link.")
		return
	}

	logger.InfoContext(ctx, "link deleted", "code", code)
	httpx.WriteJSON(w, http.StatusOK, DeleteLinkResponse{OK: true})
}

// Redirect handles GET /{code}: it records a click and redirects to the
// stored target with 302 Found.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	code, err := codeParam(r)
	if err != nil {
		h.observer.LinkResolved(false)
		logger.InfoContext(ctx, "malformed code", "code", chi.URLParam(r, "code"))
		httpx.WriteText(w, http.StatusNotFound, "Not Found")
		return
	}

	link, err := h.service.Resolve(ctx, code)
	if err != nil {
		kind := errx.KindOf(err)

		if kind == errx.NotFound || kind == errx.Invalid {
			h.observer.LinkResolved(false)
			logger.InfoContext(ctx, "unknown code", "code", code)
			httpx.WriteText(w, http.StatusNotFound, "Not Found")
			return
		}

		logger.ErrorContext(ctx, "redirect failed",
			"code", code,
			"error", err.Error(),
			"error_kind", kind,
			"operation", errx.OpOf(err),
		)
		status := httpx.ErrorKindToStatus(kind)
		httpx.WriteText(w, status, http.StatusText(status))
		return
	}

	h.observer.LinkResolved(true)
	logger.InfoContext(ctx, "redirecting",
		"code", code,
		"total_clicks", link.TotalClicks,
		"referer", r.Referer(),
	)

	httpx.Redirect(w, link.TargetURL, http.StatusFound)
}

// writeServiceError logs err at a level matching its kind and writes the
// JSON error response.
func (h *Handler) writeServiceError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error, fallback string) {
	kind := errx.KindOf(err)
	attrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.NotFound, errx.Invalid, errx.Conflict:
		logger.WarnContext(ctx, "request rejected", attrs...)
	default:
		logger.ErrorContext(ctx, "request failed", attrs...)
	}

	httpx.WriteKindError(w, err, fallback)
}
