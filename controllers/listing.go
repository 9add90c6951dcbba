package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendas-backend/config"
	"vendas-backend/models"
	"vendas-backend/services"
	"vendas-backend/utils"
)

type filterKind int

const (
	filterString filterKind = iota
	filterUUID
	filterBool
)

// queryFilter maps an exact-match query parameter onto a column.
type queryFilter struct {
	param  string
	column string
	kind   filterKind
}

// listOptions describes what a collection endpoint accepts.
type listOptions struct {
	filters  []queryFilter
	search   []string
	ordering map[string]string // ordering param -> column
	defaults []string          // default ordering, same syntax as ?ordering=
}

var errInvalidFilter = errors.New("invalid filter")

func applyFilters(q *gorm.DB, c *gin.Context, filters []queryFilter) (*gorm.DB, error) {
	for _, f := range filters {
		raw, ok := c.GetQuery(f.param)
		if !ok || raw == "" {
			continue
		}
		switch f.kind {
		case filterUUID:
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be a UUID", errInvalidFilter, f.param)
			}
			q = q.Where(f.column+" = ?", id)
		case filterBool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be true or false", errInvalidFilter, f.param)
			}
			q = q.Where(f.column+" = ?", b)
		default:
			q = q.Where(f.column+" = ?", raw)
		}
	}
	return q, nil
}

// applySearch matches ?search= case-insensitively against any of columns.
func applySearch(q *gorm.DB, c *gin.Context, columns []string) *gorm.DB {
	term := strings.TrimSpace(c.Query("search"))
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// applyOrdering reads ?ordering=a,-b. Unknown fields are ignored; with no
// usable field the defaults apply.
func applyOrdering(q *gorm.DB, c *gin.Context, allowed map[string]string, defaults []string) *gorm.DB {
	var fields []string
	if raw := c.Query("ordering"); raw != "" {
		fields = strings.Split(raw, ",")
	}

	applied := 0
	for _, f := range fields {
		if col, desc, ok := orderColumn(strings.TrimSpace(f), allowed); ok {
			q = q.Order(orderClause(col, desc))
			applied++
		}
	}
	if applied > 0 {
		return q
	}

	for _, f := range defaults {
		desc := strings.HasPrefix(f, "-")
		q = q.Order(orderClause(strings.TrimPrefix(f, "-"), desc))
	}
	return q
}

func orderColumn(field string, allowed map[string]string) (string, bool, bool) {
	desc := strings.HasPrefix(field, "-")
	col, ok := allowed[strings.TrimPrefix(field, "-")]
	return col, desc, ok
}

func orderClause(col string, desc bool) string {
	if desc {
		return col + " DESC"
	}
	return col
}

// listQuery applies filters, search and ordering from the request.
func listQuery(q *gorm.DB, c *gin.Context, opts listOptions) (*gorm.DB, error) {
	q, err := applyFilters(q, c, opts.filters)
	if err != nil {
		return nil, err
	}
	q = applySearch(q, c, opts.search)
	return applyOrdering(q, c, opts.ordering, opts.defaults), nil
}

func parseIDParam(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+what+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates.
func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// respondDBError maps persistence errors onto HTTP statuses.
func respondDBError(c *gin.Context, err error, what string) {
	var refErr *services.ReferencedError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondWithError(c, http.StatusNotFound, what+" not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		utils.RespondWithError(c, http.StatusConflict, what+" already exists")
	case errors.As(err, &refErr):
		utils.RespondWithError(c, http.StatusConflict, refErr.Error())
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		utils.RespondWithError(c, http.StatusConflict, what+" is referenced by other records")
	case errors.Is(err, models.ErrItemNeedsProductOrDescription),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, services.ErrAmountOutOfRange):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "database error", "resource", what, "error", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

// deleteByPolicy deletes the record honoring models.Relations and answers 204.
func deleteByPolicy(c *gin.Context, table, what string) {
	id, ok := parseIDParam(c, what)
	if !ok {
		return
	}
	if err := services.Delete(dbFrom(c), table, id); err != nil {
		respondDBError(c, err, what)
		return
	}
	c.Status(http.StatusNoContent)
}

func dbFrom(c *gin.Context) *gorm.DB {
	return config.DB.WithContext(c.Request.Context())
}
