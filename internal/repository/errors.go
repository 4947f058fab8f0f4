package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"inventory_ledger/internal/domain"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the adapters care about.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

// classifyPQError translates driver failures into the domain taxonomy. onFK picks the
// meaning of a foreign key violation, which depends on the statement: a dangling
// reference on insert/update, a dependent row on delete.
func classifyPQError(err error, onFK error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if mapped := classifySQLState(string(pqErr.Code), pqErr.Message, onFK); mapped != nil {
			return mapped
		}
		return err
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

// classifySQLState maps a SQLSTATE to a domain error, or returns nil when the code has
// no domain meaning. PostgREST forwards the same codes in its error bodies.
func classifySQLState(code, message string, onFK error) error {
	switch {
	case code == codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", onFK, message)
	case code == codeCheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrNegativeValue, message)
	case code == codeNumericOutOfRange:
		return fmt.Errorf("%w: %s", domain.ErrQuantityOverflow, message)
	case code == codeUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrConflict, message)
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57"):
		return fmt.Errorf("%w: %s", domain.ErrStoreUnavailable, message)
	}
	return nil
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
