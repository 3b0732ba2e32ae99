package interfaces

import (
	"context"

	"github.com/mailsweep/mailsweep/internal/models"
)

// ScanService owns the mailbox scan lifecycle
type ScanService interface {
	// StartScan creates the job row and returns its id immediately; the
	// pipeline itself runs as a detached background task.
	StartScan(ctx context.Context, owner string, rescan bool) (string, error)
	GetScan(ctx context.Context, scanID string) (*models.ScanJob, error)
	GetActiveScan(ctx context.Context, owner string) (*models.ScanJob, error)
	ListSenderSummaries(ctx context.Context, scanID string) ([]models.SenderSummary, error)
}
