package repository

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"gorm.io/gorm"

	"github.com/mailsweep/mailsweep/interfaces"
	"github.com/mailsweep/mailsweep/internal/models"
	"github.com/mailsweep/mailsweep/internal/tracing"
)

type senderSummaryRepository struct {
	db *gorm.DB
}

func NewSenderSummaryRepository(db *gorm.DB) interfaces.SenderSummaryRepository {
	return &senderSummaryRepository{db: db}
}

func (r *senderSummaryRepository) CreateInBatches(ctx context.Context, summaries []models.SenderSummary, batchSize int) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "senderSummaryRepository.CreateInBatches")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(tracingLog.Int("summaries", len(summaries)), tracingLog.Int("batchSize", batchSize))

	if len(summaries) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(summaries, batchSize).Error; err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("failed to insert sender summaries: %w", err)
	}

	return nil
}

func (r *senderSummaryRepository) ListByScan(ctx context.Context, scanID string) ([]models.SenderSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "senderSummaryRepository.ListByScan")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagScan(span, scanID)

	var summaries []models.SenderSummary
	err := r.db.WithContext(ctx).
		Where("scan_id = ?", scanID).
		Order("total_size_bytes DESC").
		Find(&summaries).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to list sender summaries: %w", err)
	}

	return summaries, nil
}

func (r *senderSummaryRepository) DeleteByOwner(ctx context.Context, owner string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "senderSummaryRepository.DeleteByOwner")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagOwner(span, owner)

	result := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Delete(&models.SenderSummary{})

	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to delete sender summaries: %w", result.Error)
	}

	return nil
}
