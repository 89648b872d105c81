package repo

import (
	"fmt"

	"donationhub/internal/domain"
	"donationhub/internal/infra"
)

// SQLSTATE codes translated into domain errors.
const (
	codeInvalidText          = "22P02"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if infra.IsNoRows(err) {
		return domain.ErrNotFound
	}
	switch infra.PgErrorCode(err) {
	case codeInvalidText:
		// Malformed identifiers cannot match any row.
		return domain.ErrNotFound
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
	}
	return err
}
