package ingest

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"medialib/internal/httpx"
)

type HTTPHandler struct {
	svc    *Service
	secret string
}

func NewHTTPHandler(svc *Service, secret string) *HTTPHandler {
	return &HTTPHandler{svc: svc, secret: secret}
}

// Register mounts the job trigger. Nothing is mounted without a secret.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	if h.secret == "" {
		return
	}
	mux.HandleFunc("POST /internal/jobs/ingest", h.Ingest)
}

// Ingest handles POST /internal/jobs/ingest
// @Summary Trigger book ingestion
// @Description Import books from Open Library into the catalog
// @Tags internal
// @Produce json
// @Param X-Internal-Secret header string true "Internal secret for authentication"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /internal/jobs/ingest [post]
func (h *HTTPHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Internal-Secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) != 1 {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid internal secret", nil)
		return
	}

	res, err := h.svc.Run(r.Context())
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusBadGateway, "INGEST_FAILED", err.Error(), nil)
		return
	}

	httpx.JSONSuccess(w, r, res, nil)
}
