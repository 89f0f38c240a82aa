package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

// Priority is the closed set of todo priorities. Anything outside the set
// is rejected at the API boundary.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Todo is a single todo document. JSON and BSON field names match the wire
// format the browser client consumes (`_id`, camelCase).
type Todo struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Completed   bool               `bson:"completed" json:"completed"`
	Priority    Priority           `bson:"priority" json:"priority"`
	DueDate     *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidationError reports a rejected field. Handlers map it to a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// CreateInput is the accepted body for creating a todo.
type CreateInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string `json:"dueDate"`
}

// UpdateInput is the accepted body for updating a todo. All fields are
// pointers so an absent field can be told apart from a zero value; absent
// fields preserve the record's prior values.
type UpdateInput struct {
	Title       *string `json:"title" validate:"omitnil,min=1"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Priority    *string `json:"priority" validate:"omitnil,oneof=low medium high"`
	DueDate     *string `json:"dueDate"`
}

// NewTodo validates and normalizes a creation payload into a Todo. The id
// is left unset for the store to generate.
func (in CreateInput) NewTodo(now time.Time) (*Todo, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Priority = strings.TrimSpace(in.Priority)
	if err := validate.Struct(in); err != nil {
		return nil, asValidationError(err)
	}

	due, err := ParseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	priority := Priority(in.Priority)
	if priority == "" {
		priority = PriorityMedium
	}

	return &Todo{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Completed:   false,
		Priority:    priority,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply validates the input and merges the present fields into t,
// refreshing UpdatedAt. The id and CreatedAt are never touched.
func (in UpdateInput) Apply(t *Todo, now time.Time) error {
	if in.Title != nil {
		*in.Title = strings.TrimSpace(*in.Title)
	}
	if in.Priority != nil {
		*in.Priority = strings.TrimSpace(*in.Priority)
	}
	if err := validate.Struct(in); err != nil {
		return asValidationError(err)
	}

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if in.Priority != nil {
		t.Priority = Priority(*in.Priority)
	}
	if in.DueDate != nil {
		due, err := ParseDueDate(*in.DueDate)
		if err != nil {
			return err
		}
		t.DueDate = due
	}
	t.UpdatedAt = now
	return nil
}

// ParseDueDate parses a due-date string as RFC 3339 or a bare YYYY-MM-DD
// date. An empty string means no due date.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		ts = ts.UTC()
		return &ts, nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		ts = ts.UTC()
		return &ts, nil
	}
	return nil, &ValidationError{Field: "dueDate", Message: "dueDate must be an RFC 3339 timestamp or YYYY-MM-DD date"}
}

// asValidationError converts the first validator failure into the field
// message the API exposes.
func asValidationError(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &ValidationError{Message: "invalid request body"}
	}
	fe := errs[0]
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "min" {
			return &ValidationError{Field: "title", Message: "title cannot be empty"}
		}
		return &ValidationError{Field: "title", Message: "Title is required"}
	case "Priority":
		return &ValidationError{Field: "priority", Message: "priority must be one of low, medium, high"}
	default:
		return &ValidationError{Field: fe.Field(), Message: "invalid value for " + fe.Field()}
	}
}
