package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/internal/lifecycle"
)

const SignatureHeader = "X-Jurigo-Signature"

// WebhookHandler receives payment confirmations from the payment provider.
type WebhookHandler struct {
	ctl    *lifecycle.Controller
	secret []byte
	log    *slog.Logger
}

func NewWebhookHandler(ctl *lifecycle.Controller, secret string, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{ctl: ctl, secret: []byte(secret), log: discardIfNil(log)}
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// verify checks the signature in constant time. An unset secret rejects
// every call.
func (h *WebhookHandler) verify(body []byte, header string) bool {
	if len(h.secret) == 0 || header == "" {
		return false
	}
	if !strings.HasPrefix(header, "sha256=") {
		header = "sha256=" + header
	}
	return hmac.Equal([]byte(Sign(h.secret, body)), []byte(strings.ToLower(header)))
}

func (h *WebhookHandler) Payment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httpx.MaxBodyBytes))
	if err != nil {
		writeCode(w, r, http.StatusBadRequest, "invalid_json")
		return
	}
	if !h.verify(body, r.Header.Get(SignatureHeader)) {
		h.log.WarnContext(r.Context(), "payment webhook rejected", "reason", "signature")
		writeCode(w, r, http.StatusUnauthorized, "invalid_signature")
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	var in lifecycle.PaymentInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.ctl.RecordPayment(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewCompany(r, c))
}
