package history

import (
	"context"

	"browserboot/domain/launch"
)

// Repository defines the interface for run record persistence.
type Repository interface {
	// Insert stores a finished run.
	Insert(ctx context.Context, record *Record) error

	// FindRecent returns up to limit records, newest first.
	FindRecent(ctx context.Context, limit int) ([]*Record, error)

	// FindByMode returns up to limit records of one mode, newest first.
	FindByMode(ctx context.Context, mode launch.Mode, limit int) ([]*Record, error)
}
