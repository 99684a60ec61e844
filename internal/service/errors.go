package service

import (
	"context"
	"errors"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/logger"
	"github.com/teamtrack/teamtrack/internal/store"
)

// storageFailure logs err with the request logger and hides it behind a
// StorageError.
func storageFailure(ctx context.Context, op string, err error) error {
	logger.FromContext(ctx).Error().Err(err).Str("op", op).Msg("storage failure")
	return &domain.StorageError{Err: err}
}

// lookupFailure turns store.ErrNotFound into a NotFoundError for kind/id and
// anything else into a StorageError.
func lookupFailure(ctx context.Context, op, kind string, id int64, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFound(kind, id)
	}
	return storageFailure(ctx, op, err)
}
