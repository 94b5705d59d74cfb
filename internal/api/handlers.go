package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/pathsafe"
	"github.com/wardenhq/warden/internal/policy"
	"github.com/wardenhq/warden/internal/rules"
	"github.com/wardenhq/warden/internal/token"
)

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	engine *policy.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(engine *policy.Engine) *Handlers {
	return &Handlers{engine: engine}
}

// CheckHandler handles POST /check.
func (h *Handlers) CheckHandler(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !decodeBody(w, r, &req) {
		return
	}
	kind, err := rules.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CheckResponse{
		Allowed: h.engine.IsCommandSafe(req.Command, kind),
	})
}

// FileCheckHandler handles POST /files/check.
func (h *Handlers) FileCheckHandler(w http.ResponseWriter, r *http.Request) {
	var req FileCheckRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "missing path")
		return
	}

	writeJSON(w, http.StatusOK, CheckResponse{
		Allowed: h.engine.CheckFileSafety(req.Path, pathsafe.Operation(req.Operation)),
	})
}

// SanitizeHandler handles POST /sanitize.
func (h *Handlers) SanitizeHandler(w http.ResponseWriter, r *http.Request) {
	var req SanitizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, SanitizeResponse{Text: h.engine.SanitizeInput(req.Text)})
}

// TokenCreateHandler handles POST /tokens.
func (h *Handlers) TokenCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req TokenCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tok, err := h.engine.CreateAccessToken(req.Claims, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	writeJSON(w, http.StatusOK, TokenCreateResponse{Token: tok})
}

// TokenVerifyHandler handles POST /tokens/verify.
func (h *Handlers) TokenVerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req TokenVerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	claims, err := h.engine.VerifyToken(req.Token)
	switch {
	case errors.Is(err, token.ErrExpired):
		writeError(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, token.ErrInvalid):
		writeError(w, http.StatusUnauthorized, "token invalid")
	case err != nil:
		writeError(w, http.StatusUnauthorized, "token rejected")
	default:
		writeJSON(w, http.StatusOK, TokenVerifyResponse{Claims: claims})
	}
}

// PasswordHashHandler handles POST /passwords/hash.
func (h *Handlers) PasswordHashHandler(w http.ResponseWriter, r *http.Request) {
	var req PasswordHashRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing password")
		return
	}

	hash, err := h.engine.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	writeJSON(w, http.StatusOK, PasswordHashResponse{Hash: hash})
}

// PasswordVerifyHandler handles POST /passwords/verify.
func (h *Handlers) PasswordVerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req PasswordVerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, PasswordVerifyResponse{
		Valid: h.engine.VerifyPassword(req.Password, req.Hash),
	})
}

// ReportHandler handles GET /report.
func (h *Handlers) ReportHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Report())
}

// EventsHandler handles GET /events (paginated) and POST /events (caller
// audit entries).
func (h *Handlers) EventsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, total := h.engine.Events(offset, limit)
		writeJSON(w, http.StatusOK, EventListResponse{Events: events, Total: total})
	case http.MethodPost:
		var req EventRequest
		if !decodeBody(w, r, &req) {
			return
		}
		severity, err := audit.ParseSeverity(req.Severity)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.EventType == "" {
			writeError(w, http.StatusBadRequest, "missing event_type")
			return
		}
		h.engine.LogSecurityEvent(req.EventType, req.Details, severity)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// HealthHandler handles GET /healthz. No authentication required.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a standard error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: status})
}
