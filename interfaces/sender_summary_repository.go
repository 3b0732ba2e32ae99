package interfaces

import (
	"context"

	"github.com/mailsweep/mailsweep/internal/models"
)

type SenderSummaryRepository interface {
	CreateInBatches(ctx context.Context, summaries []models.SenderSummary, batchSize int) error
	ListByScan(ctx context.Context, scanID string) ([]models.SenderSummary, error)
	DeleteByOwner(ctx context.Context, owner string) error
}
