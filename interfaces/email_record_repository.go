package interfaces

import (
	"context"

	"github.com/mailsweep/mailsweep/internal/models"
)

type EmailRecordRepository interface {
	// CreateInBatches appends records in fixed-size chunks; records are immutable once written
	CreateInBatches(ctx context.Context, records []models.EmailRecord, batchSize int) error
	CountByScan(ctx context.Context, scanID string) (int64, error)
	DeleteByOwner(ctx context.Context, owner string) error
}
