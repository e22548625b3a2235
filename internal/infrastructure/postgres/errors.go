package postgres

import (
	"errors"

	"github.com/automator-io/admin-service/internal/domain/repository"
	"github.com/automator-io/admin-service/internal/infrastructure/docstore"
)

// mapErr translates store-level sentinels to domain-level ones.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		return repository.ErrNotFound
	case errors.Is(err, docstore.ErrDuplicate):
		return repository.ErrDuplicate
	default:
		return err
	}
}
