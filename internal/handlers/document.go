package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/i18n"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/models"
)

type DocumentHandler struct {
	ctl *lifecycle.Controller
	log *slog.Logger
}

func NewDocumentHandler(ctl *lifecycle.Controller, log *slog.Logger) *DocumentHandler {
	return &DocumentHandler{ctl: ctl, log: discardIfNil(log)}
}

// UploadURL issues an upload reference for the company in the path.
func (h *DocumentHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req lifecycle.UploadRequest
	if !decode(w, r, &req) {
		return
	}
	req.CompanyID = r.PathValue("id")
	ref, err := h.ctl.RequestUploadReference(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ref)
}

// Record stores the metadata of a file already uploaded.
func (h *DocumentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.DocumentInput
	if !decode(w, r, &in) {
		return
	}
	in.CompanyID = r.PathValue("id")
	doc, err := h.ctl.RecordUploadedDocument(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.ctl.ListDocuments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Checklist returns the required documents with localized labels.
func (h *DocumentHandler) Checklist(w http.ResponseWriter, r *http.Request) {
	items, err := h.ctl.Checklist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	lang := i18n.LangFromContext(r.Context())
	for i := range items {
		items[i].Label = i18n.DocumentLabel(lang, items[i].Type)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	ref, err := h.ctl.RequestDownloadReference(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"download_url": ref.URL, "expires_at": ref.ExpiresAt})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.DeleteDocument(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
