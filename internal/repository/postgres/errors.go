package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventscape/internal/domain"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// translateError maps driver errors onto domain sentinels and leaves others untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeForeignKeyViolation:
			return domain.ErrInvalidReference
		case codeUniqueViolation:
			return domain.ErrConflict
		}
	}
	return err
}
