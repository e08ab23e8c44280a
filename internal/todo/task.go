// Package todo is the task-list web app the collectors exercise: a chi
// router over a SQL (or in-memory) store with server-rendered pages.
package todo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// MaxTitleLen bounds task titles.
const MaxTitleLen = 200

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// Task is one todo item.
type Task struct {
	ID       int64  `json:"id"`
	Title    string `json:"title" validate:"required,max=200"`
	Complete bool   `json:"complete"`
}

func (t Task) String() string {
	return t.Title
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the title constraints.
func (t Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Tag() {
			case "required":
				return errors.New("title is required")
			case "max":
				return fmt.Errorf("title must be at most %d characters", MaxTitleLen)
			}
		}
		return err
	}
	return nil
}

// Store persists tasks. List returns tasks ordered by id.
type Store interface {
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t Task) error
	Delete(ctx context.Context, id int64) error
}
