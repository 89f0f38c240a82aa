package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/avelin/todoweb/internal/db"
	"github.com/avelin/todoweb/internal/models"
)

const requestTimeout = 5 * time.Second

// StatusReporter is the slice of the persistence gateway the status
// endpoints need.
type StatusReporter interface {
	State() db.ConnState
	Stats(ctx context.Context) (*db.DBStats, error)
}

type Handler struct {
	Todos  db.TodoRepository
	Status StatusReporter
	Log    *log.Logger
}

func New(todos db.TodoRepository, status StatusReporter, logger *log.Logger) *Handler {
	return &Handler{Todos: todos, Status: status, Log: logger}
}

// Register wires all API routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/todos", h.HandleTodos)
	mux.HandleFunc("/todos/", h.HandleTodoByID)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/db-info", h.HandleDBInfo)
}

func sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// sendError writes the error envelope every failure path uses.
func sendError(w http.ResponseWriter, msg string, code int) {
	sendJSON(w, code, map[string]string{"error": msg})
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "application/json"
}

// respondError maps a failure onto the API's three error classes:
// validation -> 400, missing record -> 404, everything else -> 500.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		sendError(w, verr.Message, http.StatusBadRequest)
	case errors.Is(err, db.ErrNoTodo):
		sendError(w, "Todo not found", http.StatusNotFound)
	default:
		h.Log.Error("store operation failed", "error", err)
		sendError(w, "Database error", http.StatusInternalServerError)
	}
}
