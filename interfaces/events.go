package interfaces

import (
	"context"

	"github.com/mailsweep/mailsweep/internal/models"
)

// ScanEventPublisher pushes ScanJob snapshots to subscribers. Publishing is
// best-effort; a failed publish must never fail the scan.
type ScanEventPublisher interface {
	PublishScanProgress(ctx context.Context, job *models.ScanJob) error
	Close() error
}
