package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/avelin/todoweb/internal/db"
	"github.com/avelin/todoweb/internal/models"
)

type fakeStatus struct {
	state db.ConnState
	stats *db.DBStats
	err   error
}

func (f *fakeStatus) State() db.ConnState { return f.state }

func (f *fakeStatus) Stats(ctx context.Context) (*db.DBStats, error) { return f.stats, f.err }

func setupHTTP(t *testing.T) (*http.ServeMux, *db.MemoryRepository) {
	t.Helper()

	repo := db.NewMemoryRepository()
	h := New(repo, &fakeStatus{}, log.New(io.Discard))
	mux := http.NewServeMux()
	h.Register(mux)
	return mux, repo
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(buf))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeTodo(t *testing.T, rec *httptest.ResponseRecorder) models.Todo {
	t.Helper()

	var todo models.Todo
	if err := json.Unmarshal(rec.Body.Bytes(), &todo); err != nil {
		t.Fatalf("decode todo: %v (body: %s)", err, rec.Body.String())
	}
	return todo
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error envelope: %v (body: %s)", err, rec.Body.String())
	}
	msg, ok := body["error"]
	if !ok {
		t.Fatalf("error response missing \"error\" key: %s", rec.Body.String())
	}
	return msg
}

func createTodo(t *testing.T, mux *http.ServeMux, body any) models.Todo {
	t.Helper()

	rec := doJSON(t, mux, http.MethodPost, "/todos", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /todos status=%d body=%s", rec.Code, rec.Body.String())
	}
	return decodeTodo(t, rec)
}
