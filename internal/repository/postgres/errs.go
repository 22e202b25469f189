package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

const uniqueViolation = "23505"

// classify normalizes driver errors into the application error categories.
// Errors the server answered with stay internal; anything that looks like an
// unreachable backend becomes unavailable so callers can fall back.
func classify(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound(entity, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) == uniqueViolation {
			return apperrors.NewConflict(entity, err)
		}
		if pqErr.Code.Class() == "08" {
			return apperrors.NewUnavailable("database", err)
		}
		return apperrors.NewInternal(err)
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	return apperrors.NewUnavailable("database", err)
}
