package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/mailsweep/mailsweep/interfaces"
	"github.com/mailsweep/mailsweep/internal/enum"
	er "github.com/mailsweep/mailsweep/internal/errors"
	"github.com/mailsweep/mailsweep/internal/models"
	"github.com/mailsweep/mailsweep/internal/tracing"
	"github.com/mailsweep/mailsweep/internal/utils"
)

type scanJobRepository struct {
	db *gorm.DB
}

func NewScanJobRepository(db *gorm.DB) interfaces.ScanJobRepository {
	return &scanJobRepository{db: db}
}

func (r *scanJobRepository) Create(ctx context.Context, job *models.ScanJob) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scanJobRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("failed to create scan job: %w", err)
	}
	tracing.TagScan(span, job.ID)

	return nil
}

func (r *scanJobRepository) GetByID(ctx context.Context, id string) (*models.ScanJob, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scanJobRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagScan(span, id)

	var job models.ScanJob
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&job)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil // No such scan
		}
		tracing.TraceErr(span, result.Error)
		return nil, fmt.Errorf("failed to get scan job: %w", result.Error)
	}

	return &job, nil
}

// GetActiveByOwner returns the owner's most recent non-terminal scan, if any
func (r *scanJobRepository) GetActiveByOwner(ctx context.Context, owner string) (*models.ScanJob, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scanJobRepository.GetActiveByOwner")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagOwner(span, owner)

	var job models.ScanJob
	result := r.db.WithContext(ctx).
		Where("owner = ? AND status IN ?", owner, []enum.ScanStatus{enum.ScanStatusPending, enum.ScanStatusInProgress}).
		Order("started_at DESC").
		First(&job)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		tracing.TraceErr(span, result.Error)
		return nil, fmt.Errorf("failed to get active scan job: %w", result.Error)
	}

	return &job, nil
}

// UpdateProgress writes a progress snapshot. The WHERE guard keeps progress
// monotonic and refuses to touch terminal jobs; losing the race is not an
// error since progress is a best-effort signal.
func (r *scanJobRepository) UpdateProgress(ctx context.Context, id string, progress int, message string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scanJobRepository.UpdateProgress")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagScan(span, id)

	result := r.db.WithContext(ctx).
		Model(&models.ScanJob{}).
		Where("id = ? AND status = ? AND progress <= ?", id, enum.ScanStatusInProgress, progress).
		Updates(map[string]interface{}{
			"progress":         progress,
			"progress_message": message,
			"updated_at":       utils.Now(),
		})

	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to update scan progress: %w", result.Error)
	}

	return nil
}

func (r *scanJobRepository) Complete(ctx context.Context, id string, stats interfaces.ScanCompletionStats) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scanJobRepository.Complete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagScan(span, id)

	result := r.db.WithContext(ctx).
		Model(&models.ScanJob{}).
		Where("id = ? AND status = ?", id, enum.ScanStatusInProgress).
		Updates(map[string]interface{}{
			"status":               enum.ScanStatusCompleted,
			"progress":             100,
			"progress_message":     "Scan completed",
			"completed_at":         utils.Now(),
			"total_emails_scanned": stats.TotalEmailsScanned,
			"total_senders":        stats.TotalSenders,
			"space_scanned":        stats.SpaceScanned,
			"deletable_senders":    stats.DeletableSenders,
			"deletable_mails":      stats.DeletableMails,
			"recoverable_space":    stats.RecoverableSpace,
			"updated_at":           utils.Now(),
		})

	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to complete scan job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// The job was closed elsewhere, e.g. by the stale-scan reaper
		return er.ErrScanTerminated
	}

	return nil
}

// Fail closes the job on any non-terminal state so a fault can never leave
// a scan stuck in_progress
func (r *scanJobRepository) Fail(ctx context.Context, id string, message string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scanJobRepository.Fail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagScan(span, id)

	result := r.db.WithContext(ctx).
		Model(&models.ScanJob{}).
		Where("id = ? AND status IN ?", id, []enum.ScanStatus{enum.ScanStatusPending, enum.ScanStatusInProgress}).
		Updates(map[string]interface{}{
			"status":           enum.ScanStatusFailed,
			"progress_message": message,
			"completed_at":     utils.Now(),
			"updated_at":       utils.Now(),
		})

	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to fail scan job: %w", result.Error)
	}

	return nil
}

func (r *scanJobRepository) DeleteByOwner(ctx context.Context, owner string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scanJobRepository.DeleteByOwner")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagOwner(span, owner)

	result := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Delete(&models.ScanJob{})

	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to delete scan jobs: %w", result.Error)
	}

	return nil
}

func (r *scanJobRepository) GetStaleInProgress(ctx context.Context, olderThan time.Time) ([]models.ScanJob, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scanJobRepository.GetStaleInProgress")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var jobs []models.ScanJob
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enum.ScanStatusInProgress, olderThan).
		Find(&jobs).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to get stale scan jobs: %w", err)
	}

	return jobs, nil
}
