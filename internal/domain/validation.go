package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// FieldError describes one violated constraint.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "Task validation failed: " + strings.Join(parts, ", ")
}

// Messages joins the field messages the way they are shown to users.
func (e *ValidationError) Messages() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, ". ")
}

// IsValidation reports whether err carries field errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// taskRules mirrors Task for the validator; text is already trimmed by Apply.
type taskRules struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status" validate:"required,oneof=pending in-progress completed"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

var statusMessage = fmt.Sprintf("Status is either: %s, %s, or %s",
	StatusPending, StatusInProgress, StatusCompleted)

// Validate checks t against the task schema. It returns nil or a *ValidationError.
func Validate(t Task) error {
	err := validate.Struct(taskRules{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
	})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		if fe.Tag() == "required" {
			return "Title is required"
		}
		return fmt.Sprintf("Title cannot be more than %d characters", MaxTitleLength)
	case "description":
		return fmt.Sprintf("Description cannot be more than %d characters", MaxDescriptionLength)
	case "status":
		return statusMessage
	}
	return fe.Error()
}
