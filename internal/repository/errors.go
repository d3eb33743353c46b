package repository

import (
	"errors"

	"gasdepot/internal/domain"

	"gorm.io/gorm"
)

// translate maps gorm errors onto domain errors. what names the entity, e.g. "order".
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Conflict(what+" already exists", err)
	default:
		return domain.Store(what+" store error", err)
	}
}
