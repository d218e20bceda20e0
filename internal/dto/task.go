package dto

import (
	"time"

	dom "taskmanager/internal/domain"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// CreateTaskRequest is the JSON body for POST /tasks.
// Fields are pointers so an omitted status can default to pending.
type CreateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// UpdateTaskRequest is the JSON body for PATCH /tasks/:id. nil = leave unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (r CreateTaskRequest) Fields() dom.Fields {
	return toFields(r.Title, r.Description, r.Status)
}

func (r UpdateTaskRequest) Fields() dom.Fields {
	return toFields(r.Title, r.Description, r.Status)
}

func toFields(title, desc, status *string) dom.Fields {
	f := dom.Fields{Title: title, Description: desc}
	if status != nil {
		s := dom.Status(*status)
		f.Status = &s
	}
	return f
}

// TaskResponse is a task as returned by the API. createdAt is never exposed.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TasksData struct {
	Tasks []TaskResponse `json:"tasks"`
}

// ListTasksResponse is the envelope for GET /tasks.
type ListTasksResponse struct {
	Status  string    `json:"status"`
	Results int       `json:"results"`
	Data    TasksData `json:"data"`
}

type TaskData struct {
	Task TaskResponse `json:"task"`
}

// TaskEnvelope wraps a single task for create, read and update.
type TaskEnvelope struct {
	Status string   `json:"status"`
	Data   TaskData `json:"data"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for every 4xx and 5xx response.
// Detail and Stack are only filled in development.
type ErrorResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Detail  string       `json:"detail,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
}

func TaskToResponse(t dom.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		UpdatedAt:   t.UpdatedAt,
	}
}

func TasksToResponses(list []dom.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = TaskToResponse(list[i])
	}
	return out
}

func FieldErrors(ve *dom.ValidationError) []FieldError {
	out := make([]FieldError, len(ve.Fields))
	for i, f := range ve.Fields {
		out[i] = FieldError{Field: f.Field, Message: f.Message}
	}
	return out
}
