package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/i18n"
	"github.com/diewo77/jurigo/internal/export"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/internal/store"
)

const maxPageSize = 200

// AdminHandler serves the back-office dashboard. Read endpoints degrade to
// empty data with "degraded": true when the store is unavailable.
type AdminHandler struct {
	ctl *lifecycle.Controller
	log *slog.Logger
	now func() time.Time
}

func NewAdminHandler(ctl *lifecycle.Controller, log *slog.Logger) *AdminHandler {
	return &AdminHandler{ctl: ctl, log: discardIfNil(log), now: time.Now}
}

type statsResponse struct {
	lifecycle.Stats
	Degraded bool `json:"degraded"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.ctl.Stats(r.Context())
	if err != nil {
		if !errors.Is(err, models.ErrDependency) {
			writeError(w, r, h.log, err)
			return
		}
		h.log.WarnContext(r.Context(), "admin stats degraded", "error", err)
		httpx.JSON(w, http.StatusOK, statsResponse{Degraded: true})
		return
	}
	httpx.JSON(w, http.StatusOK, statsResponse{Stats: s})
}

// listFilter reads ?status=&limit=&offset=.
func listFilter(r *http.Request) store.ListFilter {
	q := r.URL.Query()
	f := store.ListFilter{Status: models.CompanyStatus(q.Get("status"))}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		f.Limit = min(n, maxPageSize)
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		f.Offset = n
	}
	return f
}

// adminCompanyView adds the statuses an admin can move the company to.
type adminCompanyView struct {
	companyView
	NextStatuses []models.CompanyStatus `json:"next_statuses"`
}

func viewAdminCompany(r *http.Request, c *models.Company) adminCompanyView {
	next := lifecycle.NextStatuses(c.Status)
	if next == nil {
		next = []models.CompanyStatus{}
	}
	return adminCompanyView{companyView: viewCompany(r, c), NextStatuses: next}
}

func (h *AdminHandler) Companies(w http.ResponseWriter, r *http.Request) {
	cs, err := h.ctl.AllCompanies(r.Context(), listFilter(r))
	if err != nil {
		if !errors.Is(err, models.ErrDependency) {
			writeError(w, r, h.log, err)
			return
		}
		h.log.WarnContext(r.Context(), "admin company list degraded", "error", err)
		httpx.JSON(w, http.StatusOK, map[string]any{"companies": []adminCompanyView{}, "degraded": true})
		return
	}
	out := make([]adminCompanyView, len(cs))
	for i := range cs {
		out[i] = viewAdminCompany(r, &cs[i])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"companies": out, "degraded": false})
}

// Export streams every company matching the filter as an XLSX file.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	f := listFilter(r)
	f.Limit = 0
	cs, err := h.ctl.AllCompanies(r.Context(), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(h.now())+`"`)
	if err := export.WriteCompanies(w, i18n.LangFromContext(r.Context()), cs); err != nil {
		// Headers are gone; all that is left is to log.
		h.log.ErrorContext(r.Context(), "company export failed", "error", err)
	}
}

type statusRequest struct {
	Status models.CompanyStatus `json:"status"`
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.ctl.UpdateCompanyStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewAdminCompany(r, c))
}

type verifyRequest struct {
	Status models.DocumentStatus `json:"status"`
	Notes  *string               `json:"notes"`
}

func (h *AdminHandler) VerifyDocument(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := h.ctl.VerifyDocument(r.Context(), r.PathValue("id"), req.Status, req.Notes)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *AdminHandler) Notes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.ctl.Notes(r.Context(), r.PathValue("id"))
	if err != nil {
		if !errors.Is(err, models.ErrDependency) {
			writeError(w, r, h.log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"notes": []models.AdminNote{}, "degraded": true})
		return
	}
	if notes == nil {
		notes = []models.AdminNote{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notes": notes, "degraded": false})
}

type noteRequest struct {
	Content string `json:"content"`
}

func (h *AdminHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decode(w, r, &req) {
		return
	}
	note, err := h.ctl.AddNote(r.Context(), r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, note)
}
