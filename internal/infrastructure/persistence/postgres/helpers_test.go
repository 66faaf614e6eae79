package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/bibbank/loanintake/internal/domain/model"
)

func TestStoreError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		notFound    bool
		unavailable bool
	}{
		{"no rows", pgx.ErrNoRows, true, false},
		{"invalid uuid text", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}, true, false},
		{"wrapped invalid uuid text", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "22P02"}), true, false},
		{"connection refused", errors.New("dial tcp: connection refused"), false, true},
		{"other sql state", &pgconn.PgError{Code: "57P01"}, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := storeError("delete loan application", tc.err)
			assert.Equal(t, tc.notFound, errors.Is(err, model.ErrApplicationNotFound))
			assert.Equal(t, tc.unavailable, errors.Is(err, model.ErrStoreUnavailable))
		})
	}
}
