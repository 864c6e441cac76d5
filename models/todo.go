package models

import (
	"fmt"
	"time"
)

// Priority orders todos by urgency; a lower value is more urgent
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// Area is the topic a todo belongs to
type Area string

const (
	AreaSports     Area = "sports"
	AreaUniversity Area = "university"
	AreaLife       Area = "life"
	AreaWork       Area = "work"
)

// Areas lists every accepted area, in display order
var Areas = []Area{AreaSports, AreaUniversity, AreaLife, AreaWork}

func (a Area) Valid() bool {
	for _, known := range Areas {
		if a == known {
			return true
		}
	}
	return false
}

// ParseArea validates a raw area value from a path or query string
func ParseArea(s string) (Area, error) {
	a := Area(s)
	if !a.Valid() {
		return "", fmt.Errorf("area must be one of sports, university, life, work; got %q", s)
	}
	return a, nil
}

// Todo is a single task owned by one user
type Todo struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Completed   bool      `json:"completed" db:"completed"`
	Priority    Priority  `json:"priority" db:"priority"`
	Area        Area      `json:"area" db:"area"`
	Deadline    *Date     `json:"deadline" db:"deadline"` // Serialized as YYYY-MM-DD
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateTodoRequest represents the POST /api/todos body
// Priority defaults to LOW when omitted
type CreateTodoRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=512"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    *Priority `json:"priority" validate:"omitempty,oneof=1 2 3"`
	Area        Area      `json:"area" validate:"required,oneof=sports university life work"`
	Deadline    *Date     `json:"deadline"`
}

// Todo builds the record to persist for owner userID
func (r CreateTodoRequest) Todo(userID int) Todo {
	priority := PriorityLow
	if r.Priority != nil {
		priority = *r.Priority
	}
	return Todo{
		UserID:      userID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    priority,
		Area:        r.Area,
		Deadline:    r.Deadline,
	}
}

// TodoPatch is the PUT /api/todos/{id} body. Only non-nil fields (and a
// deadline that was present in the payload) are applied.
type TodoPatch struct {
	Title       *string      `json:"title" validate:"omitempty,min=3,max=512"`
	Description *string      `json:"description"`
	Completed   *bool        `json:"completed"`
	Priority    *Priority    `json:"priority" validate:"omitempty,oneof=1 2 3"`
	Area        *Area        `json:"area" validate:"omitempty,oneof=sports university life work"`
	Deadline    OptionalDate `json:"deadline"`
}

// IsEmpty reports whether the patch carries no field at all
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil &&
		p.Priority == nil && p.Area == nil && !p.Deadline.Set
}

// Apply merges the supplied fields into t and leaves everything else untouched
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Area != nil {
		t.Area = *p.Area
	}
	if p.Deadline.Set {
		t.Deadline = p.Deadline.Date
	}
}
