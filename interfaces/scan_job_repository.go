package interfaces

import (
	"context"
	"time"

	"github.com/mailsweep/mailsweep/internal/models"
)

// ScanCompletionStats carries the derived statistics written on the final update
type ScanCompletionStats struct {
	TotalEmailsScanned int64
	TotalSenders       int64
	SpaceScanned       int64
	DeletableSenders   int64
	DeletableMails     int64
	RecoverableSpace   int64
}

type ScanJobRepository interface {
	Create(ctx context.Context, job *models.ScanJob) error
	GetByID(ctx context.Context, id string) (*models.ScanJob, error)
	GetActiveByOwner(ctx context.Context, owner string) (*models.ScanJob, error)
	// UpdateProgress persists a progress snapshot; it must never lower the
	// stored progress and must not touch jobs in a terminal state.
	UpdateProgress(ctx context.Context, id string, progress int, message string) error
	Complete(ctx context.Context, id string, stats ScanCompletionStats) error
	Fail(ctx context.Context, id string, message string) error
	DeleteByOwner(ctx context.Context, owner string) error
	GetStaleInProgress(ctx context.Context, olderThan time.Time) ([]models.ScanJob, error)
}
