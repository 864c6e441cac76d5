package store

import (
	"strings"

	"taskdo-service/models"

	sq "github.com/Masterminds/squirrel"
)

var todoColumns = []string{
	"id", "user_id", "title", "description", "completed",
	"priority", "area", "deadline", "created_at", "updated_at",
}

var statements = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// TodoFilter narrows a todo listing. Zero values mean "no constraint".
type TodoFilter struct {
	Area           *models.Area
	Deadline       *models.Date
	Query          string
	SortByDeadline bool
	Limit          uint64
}

// fold lowercases text for search. The title_lower and description_lower
// columns hold the folded values so matching does not depend on the
// database's own (ASCII-only) LOWER().
func fold(s string) string {
	return strings.ToLower(s)
}

// Predicate ANDs every filter with the owner constraint. The free-text query
// matches title OR description, case-insensitively.
func (f TodoFilter) Predicate(ownerID int) sq.And {
	pred := sq.And{sq.Eq{"user_id": ownerID}}
	if f.Area != nil {
		pred = append(pred, sq.Eq{"area": string(*f.Area)})
	}
	if f.Deadline != nil {
		pred = append(pred,
			sq.GtOrEq{"deadline": f.Deadline.Start()},
			sq.Lt{"deadline": f.Deadline.End()},
		)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + likeEscaper.Replace(fold(q)) + "%"
		pred = append(pred, sq.Or{
			sq.Expr(`title_lower LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`description_lower LIKE ? ESCAPE '\'`, pattern),
		})
	}
	return pred
}

// BuildTodoQuery returns the SELECT for ownerID's todos matching f.
// Sorting by deadline puts todos without one last.
func BuildTodoQuery(ownerID int, f TodoFilter) sq.SelectBuilder {
	query := statements.Select(todoColumns...).
		From("todos").
		Where(f.Predicate(ownerID))
	if f.SortByDeadline {
		query = query.OrderBy("deadline IS NULL", "deadline ASC", "id ASC")
	} else {
		query = query.OrderBy("id ASC")
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	return query
}
