package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError normalizes the driver's not-found error so services never
// import gorm for error checks.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports a unique-constraint violation. The answers
// (session_id, question_id) index surfaces concurrent duplicate submissions
// through this check.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
