package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"taskdo-service/models"
	"taskdo-service/store"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// TodoStore is the owner-scoped todo persistence
type TodoStore interface {
	Get(ctx context.Context, id int64, ownerID int) (*models.Todo, error)
	List(ctx context.Context, ownerID int, filter store.TodoFilter) ([]models.Todo, error)
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	Update(ctx context.Context, id int64, ownerID int, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id int64, ownerID int) (bool, error)
}

// TodoHandler serves the /api/todos routes. A todo owned by another user is
// always answered with 404 so its existence is not revealed.
type TodoHandler struct {
	todos TodoStore
}

func NewTodoHandler(todos TodoStore) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// ListTodos handles GET /api/todos?area=&deadline=&sort_by_deadline=&first_n=
func (h *TodoHandler) ListTodos(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	filter, appErr := listFilter(r)
	if appErr != nil {
		logRequest(ctx, "error", "Invalid list filter", zap.String("reason", appErr.Message))
		writeError(w, appErr)
		return
	}
	h.list(ctx, w, user, filter)
}

// SearchTodos handles GET /api/todos/search?query=
func (h *TodoHandler) SearchTodos(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	h.list(ctx, w, user, store.TodoFilter{Query: r.URL.Query().Get("query")})
}

// TodosByDeadline handles GET /api/todos/deadline/{date}
func (h *TodoHandler) TodosByDeadline(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	deadline, err := models.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, errs.NewValidationError(err.Error()))
		return
	}
	h.list(ctx, w, user, store.TodoFilter{Deadline: &deadline})
}

// TodosByArea handles GET /api/todos/area/{area}
func (h *TodoHandler) TodosByArea(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	area, err := models.ParseArea(mux.Vars(r)["area"])
	if err != nil {
		writeError(w, errs.NewValidationError(err.Error()))
		return
	}
	h.list(ctx, w, user, store.TodoFilter{Area: &area})
}

// GetTodo handles GET /api/todos/{id}
func (h *TodoHandler) GetTodo(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	id, appErr := pathID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	todo, err := h.todos.Get(ctx, id, user.ID)
	if err != nil {
		h.storeError(ctx, w, "Failed to get todo", err, id)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// CreateTodo handles POST /api/todos
func (h *TodoHandler) CreateTodo(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	var req models.CreateTodoRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		logRequest(ctx, "error", "Invalid todo body", zap.String("reason", appErr.Message))
		writeError(w, appErr)
		return
	}

	todo := req.Todo(user.ID)
	created, err := h.todos.Create(ctx, &todo)
	if err != nil {
		logRequest(ctx, "error", "Failed to create todo", zap.Error(err))
		writeError(w, errs.NewInternalServerError("Failed to create todo"))
		return
	}

	logRequest(ctx, "info", "Todo created", zap.Int64("todo_id", created.ID))
	writeJSON(w, http.StatusOK, created)
}

// UpdateTodo handles PUT /api/todos/{id}; only the fields present in the
// body are changed
func (h *TodoHandler) UpdateTodo(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	id, appErr := pathID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var patch models.TodoPatch
	if appErr := decodeBody(r, &patch); appErr != nil {
		logRequest(ctx, "error", "Invalid todo update", zap.String("reason", appErr.Message))
		writeError(w, appErr)
		return
	}

	updated, err := h.todos.Update(ctx, id, user.ID, patch)
	if err != nil {
		h.storeError(ctx, w, "Failed to update todo", err, id)
		return
	}

	logRequest(ctx, "info", "Todo updated", zap.Int64("todo_id", id))
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTodo handles DELETE /api/todos/{id} and returns the removed todo
func (h *TodoHandler) DeleteTodo(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	id, appErr := pathID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	todo, err := h.todos.Get(ctx, id, user.ID)
	if err != nil {
		h.storeError(ctx, w, "Failed to get todo", err, id)
		return
	}
	deleted, err := h.todos.Delete(ctx, id, user.ID)
	if err == nil && !deleted {
		err = store.ErrNotFound
	}
	if err != nil {
		h.storeError(ctx, w, "Failed to delete todo", err, id)
		return
	}

	logRequest(ctx, "info", "Todo deleted", zap.Int64("todo_id", id))
	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) list(ctx context.Context, w http.ResponseWriter, user models.User, filter store.TodoFilter) {
	todos, err := h.todos.List(ctx, user.ID, filter)
	if err != nil {
		logRequest(ctx, "error", "Failed to list todos", zap.Error(err))
		writeError(w, errs.NewInternalServerError("Failed to retrieve todos"))
		return
	}
	logRequest(ctx, "info", "Todos retrieved", zap.Int("count", len(todos)))
	writeJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) requireUser(ctx context.Context, w http.ResponseWriter) (models.User, bool) {
	user, ok := currentUser(ctx)
	if !ok {
		logRequest(ctx, "error", "Missing authenticated user")
		writeError(w, errs.NewAuthenticationError("Not authenticated"))
	}
	return user, ok
}

func (h *TodoHandler) storeError(ctx context.Context, w http.ResponseWriter, message string, err error, id int64) {
	if errors.Is(err, store.ErrNotFound) {
		logRequest(ctx, "info", "Todo not found", zap.Int64("todo_id", id))
		writeError(w, errs.NewNotFoundError("Todo not found"))
		return
	}
	logRequest(ctx, "error", message, zap.Error(err), zap.Int64("todo_id", id))
	writeError(w, errs.NewInternalServerError(message))
}

func listFilter(r *http.Request) (store.TodoFilter, *errs.AppError) {
	var filter store.TodoFilter
	q := r.URL.Query()

	if raw := q.Get("area"); raw != "" {
		area, err := models.ParseArea(raw)
		if err != nil {
			return filter, errs.NewValidationError(err.Error())
		}
		filter.Area = &area
	}
	if raw := q.Get("deadline"); raw != "" {
		deadline, err := models.ParseDate(raw)
		if err != nil {
			return filter, errs.NewValidationError(err.Error())
		}
		filter.Deadline = &deadline
	}
	if raw := q.Get("sort_by_deadline"); raw != "" {
		sortBy, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errs.NewValidationError("sort_by_deadline must be a boolean")
		}
		filter.SortByDeadline = sortBy
	}
	if raw := q.Get("first_n"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return filter, errs.NewValidationError("first_n must be a positive integer")
		}
		filter.Limit = n
	}
	return filter, nil
}
