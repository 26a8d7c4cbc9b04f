package handlers

import (
	"net/http"

	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/internal/db"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(d *gorm.DB) *HealthHandler {
	return &HealthHandler{db: d}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(h.db); err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}
