package persistence

import (
	"errors"
	"fmt"

	"github.com/MGTheTrain/admin-console/internal/pkg/errs"

	"gorm.io/gorm"
)

// translateError maps gorm errors onto the domain error kinds
func translateError(err error, action, entity, id string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NotFound("%s with ID %s not found", entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.Conflict("%s %s already exists", entity, id)
	default:
		return fmt.Errorf("failed to %s %s: %w", action, entity, err)
	}
}
