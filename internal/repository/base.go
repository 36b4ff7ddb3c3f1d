// Package repository implements the data access layer for Warbler.
package repository

import (
	"strings"

	"warbler/internal/database"
	"warbler/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// translateWriteError maps driver constraint failures onto AppErrors.
// Anything else is an internal error.
func translateWriteError(err error, duplicate string, resource string, id interface{}) error {
	switch {
	case database.IsUniqueViolation(err):
		return models.NewConstraintError(duplicate, err)
	case database.IsForeignKeyViolation(err):
		return models.NewNotFoundError(resource, id)
	default:
		return models.NewInternalError(err)
	}
}

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(q)) + "%"
}
