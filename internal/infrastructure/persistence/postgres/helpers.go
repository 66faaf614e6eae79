package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/port"
)

// invalidTextRepresentation is raised when an id is not a valid UUID.
const invalidTextRepresentation = "22P02"

// storeError maps a pgx error onto the repository contract: no rows or a
// malformed id is not-found, everything else is the store being unavailable.
func storeError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, model.ErrApplicationNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return fmt.Errorf("%s: %w", op, model.ErrApplicationNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrStoreUnavailable, err)
}

func orderClause(o port.SortOrder) string {
	if o == port.NewestFirst {
		return "ORDER BY created_at DESC, id DESC"
	}
	return "ORDER BY created_at ASC, id ASC"
}
