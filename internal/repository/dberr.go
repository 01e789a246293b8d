package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
)

// translateError maps driver-level failures onto the service error taxonomy.
// gorm surfaces constraint violations differently per dialect, so the checks
// go by message substring the same way for postgres and sqlite.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}

	msg := err.Error()

	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "duplicate key value violates unique constraint"):
		return errs.ErrAlreadyExists

	case strings.Contains(msg, "deadlock detected"),
		strings.Contains(msg, "could not serialize access"),
		strings.Contains(msg, "canceling statement due to lock timeout"):
		return errs.ErrConcurrency
	}

	return err
}
