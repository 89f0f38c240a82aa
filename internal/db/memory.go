package db

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avelin/todoweb/internal/models"
)

// MemoryRepository keeps todos in process memory. It backs the handler
// tests and the -mem development mode. Ids are real ObjectIDs so the wire
// format is identical to the Mongo-backed store.
type MemoryRepository struct {
	mu    sync.Mutex
	todos map[primitive.ObjectID]models.Todo
	seq   map[primitive.ObjectID]uint64
	next  uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		todos: make(map[primitive.ObjectID]models.Todo),
		seq:   make(map[primitive.ObjectID]uint64),
	}
}

func (r *MemoryRepository) FindAll(ctx context.Context) ([]*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todos := make([]*models.Todo, 0, len(r.todos))
	for id := range r.todos {
		t := r.todos[id]
		todos = append(todos, &t)
	}
	// createdAt descending; insertion order breaks ties for records created
	// within the same clock tick.
	sort.Slice(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return r.seq[todos[i].ID] > r.seq[todos[j].ID]
	})
	return todos, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return nil, ErrNoTodo
	}
	return &t, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, todo *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if todo.ID.IsZero() {
		todo.ID = primitive.NewObjectID()
	}
	r.next++
	r.seq[todo.ID] = r.next
	r.todos[todo.ID] = *todo
	return nil
}

func (r *MemoryRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, todo *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return ErrNoTodo
	}
	todo.ID = id
	r.todos[id] = *todo
	return nil
}

func (r *MemoryRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return nil, ErrNoTodo
	}
	delete(r.todos, id)
	delete(r.seq, id)
	return &t, nil
}
