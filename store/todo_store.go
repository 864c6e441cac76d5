package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskdo-service/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// TodoStore persists todos. Every method is scoped to an owner id; a todo
// that belongs to someone else is reported exactly like a missing one.
type TodoStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewTodoStore(db *sqlx.DB) *TodoStore {
	return &TodoStore{db: db, now: time.Now}
}

func (s *TodoStore) Get(ctx context.Context, id int64, ownerID int) (*models.Todo, error) {
	return s.get(ctx, s.db, id, ownerID)
}

func (s *TodoStore) get(ctx context.Context, q sqlx.QueryerContext, id int64, ownerID int) (*models.Todo, error) {
	query, args, err := statements.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var todo models.Todo
	err = sqlx.GetContext(ctx, q, &todo, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	return &todo, nil
}

func (s *TodoStore) List(ctx context.Context, ownerID int, filter TodoFilter) ([]models.Todo, error) {
	query, args, err := BuildTodoQuery(ownerID, filter).ToSql()
	if err != nil {
		return nil, err
	}

	todos := []models.Todo{}
	if err := s.db.SelectContext(ctx, &todos, query, args...); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// Create stores todo for todo.UserID; the id is assigned by the table
func (s *TodoStore) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	created := *todo
	now := s.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	query, args, err := statements.Insert("todos").
		Columns("user_id", "title", "description", "completed", "priority", "area", "deadline", "created_at", "updated_at",
			"title_lower", "description_lower").
		Values(created.UserID, created.Title, created.Description, created.Completed,
			int(created.Priority), string(created.Area), deadlineValue(created.Deadline), now, now,
			fold(created.Title), fold(created.Description)).
		ToSql()
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	created.ID = id
	return &created, nil
}

// Update merges patch into the stored todo. Only the supplied columns and
// updated_at are written.
func (s *TodoStore) Update(ctx context.Context, id int64, ownerID int, patch models.TodoPatch) (*models.Todo, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	current, err := s.get(ctx, tx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, tx.Commit()
	}

	merged := *current
	patch.Apply(&merged)
	merged.UpdatedAt = s.now().UTC()
	if merged.UpdatedAt.Before(current.UpdatedAt) {
		merged.UpdatedAt = current.UpdatedAt
	}

	set := patchColumns(patch)
	set["updated_at"] = merged.UpdatedAt
	query, args, err := statements.Update("todos").
		SetMap(set).
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return &merged, nil
}

// Delete reports whether an owned todo was removed
func (s *TodoStore) Delete(ctx context.Context, id int64, ownerID int) (bool, error) {
	query, args, err := statements.Delete("todos").
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return false, err
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete todo %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete todo %d: %w", id, err)
	}
	return n > 0, nil
}

// patchColumns is the allow-list of mutable columns
func patchColumns(p models.TodoPatch) map[string]interface{} {
	set := map[string]interface{}{}
	if p.Title != nil {
		set["title"] = *p.Title
		set["title_lower"] = fold(*p.Title)
	}
	if p.Description != nil {
		set["description"] = *p.Description
		set["description_lower"] = fold(*p.Description)
	}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}
	if p.Priority != nil {
		set["priority"] = int(*p.Priority)
	}
	if p.Area != nil {
		set["area"] = string(*p.Area)
	}
	if p.Deadline.Set {
		set["deadline"] = deadlineValue(p.Deadline.Date)
	}
	return set
}

func deadlineValue(d *models.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.Start()
}
