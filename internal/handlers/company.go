package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/jurigo/auth"
	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/i18n"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/models"
)

// companyView is the JSON shape of a company, with its localized status.
type companyView struct {
	*models.Company
	StatusLabel string `json:"status_label"`
}

func viewCompany(r *http.Request, c *models.Company) companyView {
	return companyView{Company: c, StatusLabel: i18n.StatusLabel(i18n.LangFromContext(r.Context()), string(c.Status))}
}

func viewCompanies(r *http.Request, cs []models.Company) []companyView {
	out := make([]companyView, len(cs))
	for i := range cs {
		out[i] = viewCompany(r, &cs[i])
	}
	return out
}

// CompanyHandler serves the incorporation wizard.
type CompanyHandler struct {
	ctl *lifecycle.Controller
	log *slog.Logger
}

func NewCompanyHandler(ctl *lifecycle.Controller, log *slog.Logger) *CompanyHandler {
	return &CompanyHandler{ctl: ctl, log: discardIfNil(log)}
}

// Create starts an application. No account is needed.
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.CompanyInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.ctl.CreateCompany(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewCompany(r, c))
}

// Get returns one company, 404 when it does not exist.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.ctl.GetCompany(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if c == nil {
		writeCode(w, r, http.StatusNotFound, "not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, viewCompany(r, c))
}

// ByEmail lists the applications started with ?email=.
func (h *CompanyHandler) ByEmail(w http.ResponseWriter, r *http.Request) {
	cs, err := h.ctl.CompaniesByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"companies": viewCompanies(r, cs)})
}

// Update applies a partial update from the wizard.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch lifecycle.CompanyPatch
	if !decode(w, r, &patch) {
		return
	}
	c, err := h.ctl.UpdateCompany(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewCompany(r, c))
}

func (h *CompanyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c, err := h.ctl.SubmitCompany(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewCompany(r, c))
}

// Link attaches the company to the signed-in account.
func (h *CompanyHandler) Link(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	c, err := h.ctl.LinkCompanyToUser(r.Context(), r.PathValue("id"), uid)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewCompany(r, c))
}

// Mine lists the companies owned by the signed-in account.
func (h *CompanyHandler) Mine(w http.ResponseWriter, r *http.Request) {
	cs, err := h.ctl.CompaniesForCurrentUser(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"companies": viewCompanies(r, cs)})
}
