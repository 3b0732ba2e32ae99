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

type emailRecordRepository struct {
	db *gorm.DB
}

func NewEmailRecordRepository(db *gorm.DB) interfaces.EmailRecordRepository {
	return &emailRecordRepository{db: db}
}

func (r *emailRecordRepository) CreateInBatches(ctx context.Context, records []models.EmailRecord, batchSize int) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRecordRepository.CreateInBatches")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(tracingLog.Int("records", len(records)), tracingLog.Int("batchSize", batchSize))

	if len(records) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(records, batchSize).Error; err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("failed to insert email records: %w", err)
	}

	return nil
}

func (r *emailRecordRepository) CountByScan(ctx context.Context, scanID string) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRecordRepository.CountByScan")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagScan(span, scanID)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EmailRecord{}).
		Where("scan_id = ?", scanID).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, fmt.Errorf("failed to count email records: %w", err)
	}

	return count, nil
}

func (r *emailRecordRepository) DeleteByOwner(ctx context.Context, owner string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRecordRepository.DeleteByOwner")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagOwner(span, owner)

	result := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Delete(&models.EmailRecord{})

	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to delete email records: %w", result.Error)
	}

	return nil
}
