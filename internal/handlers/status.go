package handlers

import (
	"context"
	"net/http"
	"time"
)

// HandleHealth reports the gateway's connection state. It only reads
// in-process state and never triggers a connection attempt.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{
		"message":   "Server is running!",
		"database":  h.Status.State().String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleDBInfo connects (idempotently) and returns database diagnostics.
func (h *Handler) HandleDBInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*requestTimeout)
	defer cancel()

	info, err := h.Status.Stats(ctx)
	if err != nil {
		h.Log.Error("db diagnostics failed", "error", err)
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, info)
}
