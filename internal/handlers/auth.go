package handlers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/diewo77/jurigo/auth"
	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/internal/store"
	"github.com/diewo77/jurigo/validation"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthHandler struct {
	users    *store.Users
	ctl      *lifecycle.Controller
	sessions *auth.Manager
	identity lifecycle.IdentityGate
	log      *slog.Logger
}

func NewAuthHandler(users *store.Users, ctl *lifecycle.Controller, sessions *auth.Manager, identity lifecycle.IdentityGate, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, ctl: ctl, sessions: sessions, identity: identity, log: discardIfNil(log)}
}

type credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	CompanyID string `json:"company_id"`
}

// readCredentials accepts a JSON body or a classic form post.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var c credentials
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if !decode(w, r, &c) {
			return c, false
		}
	} else {
		c.Email = r.FormValue("email")
		c.Password = r.FormValue("password")
		c.Name = r.FormValue("name")
		c.CompanyID = r.FormValue("company_id")
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Name = strings.TrimSpace(c.Name)
	c.CompanyID = strings.TrimSpace(c.CompanyID)
	return c, true
}

type accountResponse struct {
	UserID uint        `json:"user_id"`
	Email  string      `json:"email,omitempty"`
	Role   models.Role `json:"role"`
	Linked bool        `json:"linked,omitempty"`
}

// Signup creates a client account and signs it in. When company_id is
// given the application is linked to the new account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	c, ok := readCredentials(w, r)
	if !ok {
		return
	}
	v := validation.Violations{}
	validation.Required("email", c.Email, v)
	validation.Email("email", c.Email, v)
	validation.Required("password", c.Password, v)
	if c.Password != "" && len(c.Password) < minPasswordLength {
		v.Add("password", validation.CodeOutOfRange)
	}
	if len(c.Name) > 255 {
		v.Add("name", validation.CodeTooLong)
	}
	if c.CompanyID != "" {
		validation.UUID("company_id", c.CompanyID, v)
	}
	if !v.Empty() {
		writeError(w, r, h.log, &lifecycle.ValidationError{Op: "auth.signup", Violations: v})
		return
	}

	taken, err := h.users.EmailTaken(r.Context(), c.Email)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if taken {
		writeCode(w, r, http.StatusConflict, "email_taken")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user := &models.User{Email: c.Email, Name: c.Name, Password: string(hash), Role: models.RoleClient}
	if err := h.users.Create(r.Context(), user); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.sessions.CreateSession(w, user.ID)
	h.log.InfoContext(r.Context(), "account created", "user_id", user.ID)

	resp := accountResponse{UserID: user.ID, Email: user.Email, Role: user.Role}
	if c.CompanyID != "" {
		ctx := auth.WithUserID(r.Context(), user.ID)
		if _, err := h.ctl.LinkCompanyToUser(ctx, c.CompanyID, user.ID); err != nil {
			// The account exists either way; the client can retry the link.
			h.log.WarnContext(r.Context(), "link after signup failed", "user_id", user.ID, "company_id", c.CompanyID, "error", err)
		} else {
			resp.Linked = true
		}
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, ok := readCredentials(w, r)
	if !ok {
		return
	}
	user, err := h.users.ByEmail(r.Context(), c.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeCode(w, r, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeError(w, r, h.log, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(c.Password)); err != nil {
		writeCode(w, r, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	h.sessions.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, accountResponse{UserID: user.ID, Email: user.Email, Role: user.Role})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the identity behind the session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity.Resolve(r.Context())
	if !ok {
		writeCode(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	httpx.JSON(w, http.StatusOK, accountResponse{UserID: id.UserID, Role: id.Role})
}
