package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avelin/todoweb/internal/models"
)

/*
handles routes:
- GET /todos - list all todos, newest first
- POST /todos - create a new todo
*/
func (h *Handler) HandleTodos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTodos(w, r)
	case http.MethodPost:
		h.createTodo(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listTodos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	todos, err := h.Todos.FindAll(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if todos == nil {
		todos = []*models.Todo{}
	}
	sendJSON(w, http.StatusOK, todos)
}

func (h *Handler) createTodo(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input models.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	todo, err := input.NewTodo(time.Now().UTC())
	if err != nil {
		h.respondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Todos.Insert(ctx, todo); err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Location", "/todos/"+todo.ID.Hex())
	sendJSON(w, http.StatusCreated, todo)
}

/*
routes:
- GET /todos/{id}
- PUT /todos/{id}
- PATCH /todos/{id} - toggle completed
- DELETE /todos/{id}
*/
func (h *Handler) HandleTodoByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/todos/")
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		sendError(w, "Invalid todo ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTodoByID(w, r, id)
	case http.MethodPut:
		h.updateTodoByID(w, r, id)
	case http.MethodPatch:
		h.toggleTodoByID(w, r, id)
	case http.MethodDelete:
		h.deleteTodoByID(w, r, id)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getTodoByID(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	todo, err := h.Todos.FindByID(ctx, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, todo)
}

func (h *Handler) updateTodoByID(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input models.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	todo, err := h.Todos.FindByID(ctx, id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := input.Apply(todo, time.Now().UTC()); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.Todos.UpdateByID(ctx, id, todo); err != nil {
		h.respondError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, todo)
}

// toggleTodoByID flips the completed flag. Read-then-write, last write
// wins; the store gives no stronger guarantee for concurrent toggles.
func (h *Handler) toggleTodoByID(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	todo, err := h.Todos.FindByID(ctx, id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	todo.Completed = !todo.Completed
	todo.UpdatedAt = time.Now().UTC()

	if err := h.Todos.UpdateByID(ctx, id, todo); err != nil {
		h.respondError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, todo)
}

func (h *Handler) deleteTodoByID(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	todo, err := h.Todos.DeleteByID(ctx, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"message": "Todo deleted successfully",
		"todo":    todo,
	})
}
