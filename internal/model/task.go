package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the board column of a task
type Status string

// Task statuses. The set is closed.
const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Statuses lists every status in board order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus converts a string into a Status, rejecting unknown values
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusTodo:
		return StatusTodo, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusDone:
		return StatusDone, nil
	default:
		return "", fmt.Errorf("invalid status %q: must be one of TODO, IN_PROGRESS, DONE", s)
	}
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Label returns the column heading for the status
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Next returns the column to the right, staying put on the last one
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s && i+1 < len(Statuses) {
			return Statuses[i+1]
		}
	}
	return s
}

// Prev returns the column to the left, staying put on the first one
func (s Status) Prev() Status {
	for i, st := range Statuses {
		if st == s && i > 0 {
			return Statuses[i-1]
		}
	}
	return s
}

// Task is a card on a project board
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	AssigneeID  *string   `json:"assigneeId"`
	Assignee    *UserRef  `json:"assignee"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTaskInput carries the fields accepted when creating a task.
// Any status supplied by a client is ignored.
type NewTaskInput struct {
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	AssigneeID  *string `json:"assigneeId,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// TaskPatch is a partial update. Absent fields are left untouched; null
// description or assignee clears the value.
type TaskPatch struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Status      Optional[Status] `json:"status"`
	AssigneeID  Optional[string] `json:"assigneeId"`
}

// IsEmpty reports whether the patch carries no fields at all
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set && !p.AssigneeID.Set
}

// MarshalJSON emits only the fields that are set
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	fields := make([]optionalField, 0, 4)
	fields = append(fields,
		optionalField{"title", p.Title.Set, p.Title.Null, p.Title.Value},
		optionalField{"description", p.Description.Set, p.Description.Null, p.Description.Value},
		optionalField{"status", p.Status.Set, p.Status.Null, p.Status.Value},
		optionalField{"assigneeId", p.AssigneeID.Set, p.AssigneeID.Null, p.AssigneeID.Value},
	)
	return marshalOptionalFields(fields)
}
