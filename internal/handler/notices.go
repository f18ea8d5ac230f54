package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"transitboard/internal/notice"
)

// Notices lists active notices. Reads are not gated.
func (h *Handler) Notices(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	ns, err := h.notices.Active(r.Context(), now)
	if err != nil {
		h.logger.Error("list notices", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"notices": []notice.Notice{},
			"error":   "Notices unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notices":   ns,
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) CreateNotice(w http.ResponseWriter, r *http.Request) {
	var d notice.Draft
	if err := decodeJSON(w, r, &d); err != nil {
		h.recordWrite("create", "invalid")
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	n, err := h.notices.Create(r.Context(), d)
	if err != nil {
		h.storeError(w, "create", err)
		return
	}
	h.recordWrite("create", "ok")
	h.logger.Info("notice created", "id", n.ID, "priority", n.Priority)
	writeJSON(w, http.StatusCreated, map[string]any{"notice": n})
}

func (h *Handler) UpdateNotice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var p notice.Patch
	if err := decodeJSON(w, r, &p); err != nil {
		h.recordWrite("update", "invalid")
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	n, err := h.notices.Update(r.Context(), id, p)
	if err != nil {
		h.storeError(w, "update", err)
		return
	}
	h.recordWrite("update", "ok")
	h.logger.Info("notice updated", "id", n.ID)
	writeJSON(w, http.StatusOK, map[string]any{"notice": n})
}

func (h *Handler) DeleteNotice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.notices.Delete(r.Context(), id); err != nil {
		h.storeError(w, "delete", err)
		return
	}
	h.recordWrite("delete", "ok")
	h.logger.Info("notice deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// VerifyPassword only runs once the admin middleware has accepted the
// password, so reaching it means the password is valid.
func (h *Handler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// KeepAlive pings the notice store so hosted databases don't idle out.
func (h *Handler) KeepAlive(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC().Format(time.RFC3339)
	if err := h.notices.Ping(r.Context()); err != nil {
		h.logger.Error("keep-alive ping", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "timestamp": now})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "timestamp": now})
}

func (h *Handler) storeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, notice.ErrInvalid):
		h.recordWrite(op, "invalid")
		msg := strings.TrimPrefix(err.Error(), notice.ErrInvalid.Error()+": ")
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, notice.ErrNotFound):
		h.recordWrite(op, "not_found")
		writeError(w, http.StatusNotFound, "Notice not found")
	default:
		h.recordWrite(op, "error")
		h.logger.Error("notice "+op, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to "+op+" notice")
	}
}
