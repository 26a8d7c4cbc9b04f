package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/internal/blob"
)

// BlobHandler redeems the signed upload and download references.
type BlobHandler struct {
	blobs *blob.Service
	log   *slog.Logger
}

func NewBlobHandler(blobs *blob.Service, log *slog.Logger) *BlobHandler {
	return &BlobHandler{blobs: blobs, log: discardIfNil(log)}
}

func (h *BlobHandler) blobError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blob.ErrInvalidToken):
		writeCode(w, r, http.StatusUnauthorized, "invalid_token")
	case errors.Is(err, blob.ErrTooLarge):
		writeCode(w, r, http.StatusRequestEntityTooLarge, "too_large")
	default:
		writeError(w, r, h.log, err)
	}
}

// Upload stores the request body under the key of ?token=.
func (h *BlobHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key, n, err := h.blobs.Put(r.Context(), r.URL.Query().Get("token"), r.Body)
	if err != nil {
		h.blobError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"key": key, "size": n})
}

// Download streams the file granted by ?token=.
func (h *BlobHandler) Download(w http.ResponseWriter, r *http.Request) {
	rc, key, err := h.blobs.Open(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.blobError(w, r, err)
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(path.Ext(key))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}))
	w.Header().Set("Cache-Control", "private, no-store")
	if _, err := io.Copy(w, rc); err != nil {
		h.log.WarnContext(r.Context(), "blob download interrupted", "key", key, "error", err)
	}
}
