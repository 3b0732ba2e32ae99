package scan

import (
	"fmt"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"golang.org/x/net/context"

	"github.com/mailsweep/mailsweep/dto"
	"github.com/mailsweep/mailsweep/interfaces"
	"github.com/mailsweep/mailsweep/internal/enum"
	er "github.com/mailsweep/mailsweep/internal/errors"
	"github.com/mailsweep/mailsweep/internal/logger"
	"github.com/mailsweep/mailsweep/internal/models"
	"github.com/mailsweep/mailsweep/internal/repository"
	"github.com/mailsweep/mailsweep/internal/tracing"
	"github.com/mailsweep/mailsweep/internal/utils"
)

const (
	// insertBatchSize chunks bulk inserts so a large mailbox stays within
	// postgres parameter limits
	insertBatchSize = 500

	// fetchChunkSize is how many messages get fetched between two progress
	// snapshots
	fetchChunkSize = 500

	progressStarted      = 5
	progressListed       = 10
	progressFetched      = 80
	progressRecordsSaved = 85
	progressAggregated   = 90
)

type scanService struct {
	log       logger.Logger
	postgres  *repository.Repositories
	gmail     interfaces.GmailClient
	tokens    interfaces.GoogleTokenService
	publisher interfaces.ScanEventPublisher
}

func NewScanService(
	log logger.Logger,
	postgres *repository.Repositories,
	gmail interfaces.GmailClient,
	tokens interfaces.GoogleTokenService,
	publisher interfaces.ScanEventPublisher,
) interfaces.ScanService {
	return &scanService{
		log:       log,
		postgres:  postgres,
		gmail:     gmail,
		tokens:    tokens,
		publisher: publisher,
	}
}

// StartScan resolves credentials, creates the job row and kicks off the
// pipeline in the background. Credential problems surface here so the caller
// gets a synchronous error instead of a job that fails a moment later.
func (s *scanService) StartScan(ctx context.Context, owner string, rescan bool) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ScanService.StartScan")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, owner)
	span.LogFields(tracingLog.Bool("rescan", rescan))

	accessToken, err := s.tokens.GetAccessToken(ctx, owner)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	if rescan {
		if err = s.purgeOwnerData(ctx, owner); err != nil {
			tracing.TraceErr(span, err)
			return "", err
		}
	}

	job := &models.ScanJob{
		Owner:           owner,
		Status:          enum.ScanStatusInProgress,
		Progress:        0,
		ProgressMessage: utils.StringPtr("Scan started"),
		StartedAt:       utils.Now(),
	}
	if err = s.postgres.ScanJobRepository.Create(ctx, job); err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	tracing.TagScan(span, job.ID)

	// The request context dies with the HTTP response; the pipeline runs on
	// its own context and reports through the job row
	go func() {
		bgCtx := utils.SetOwnerInContext(context.Background(), owner)
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("scan %s panicked: %v", job.ID, r)
				s.failScan(bgCtx, job, fmt.Sprintf("Scan aborted: %v", r))
			}
		}()

		if err := s.runScan(bgCtx, job, accessToken); err != nil {
			s.log.Errorf("scan %s failed: %v", job.ID, err)
			s.failScan(bgCtx, job, "Scan failed: "+err.Error())
		}
	}()

	return job.ID, nil
}

func (s *scanService) runScan(ctx context.Context, job *models.ScanJob, accessToken string) error {
	span, ctx := tracing.StartTracerSpan(ctx, "ScanService.runScan")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagScan(span, job.ID)

	s.updateProgress(ctx, job, progressStarted, "Listing mailbox")

	ids, err := s.gmail.ListMessageIDs(ctx, accessToken)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	span.LogFields(tracingLog.Int("messageCount", len(ids)))

	s.updateProgress(ctx, job, progressListed, fmt.Sprintf("Found %d messages", len(ids)))

	messages := s.fetchWithProgress(ctx, job, accessToken, ids)

	records := make([]models.EmailRecord, 0, len(messages))
	for _, message := range messages {
		if message == nil {
			// Fetch failed for this message; skip it rather than abort
			continue
		}
		records = append(records, NormalizeMessage(job.ID, job.Owner, message))
	}

	if err = s.postgres.EmailRecordRepository.CreateInBatches(ctx, records, insertBatchSize); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	// The store is authoritative for how many records actually landed
	savedCount, err := s.postgres.EmailRecordRepository.CountByScan(ctx, job.ID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	s.updateProgress(ctx, job, progressRecordsSaved, fmt.Sprintf("Saved %d email records", savedCount))

	summaries := AggregateSenders(records)
	if err = s.postgres.SenderSummaryRepository.CreateInBatches(ctx, summaries, insertBatchSize); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	s.updateProgress(ctx, job, progressAggregated, "Aggregating senders")

	stats := ComputeCompletionStats(records, summaries)
	stats.TotalEmailsScanned = savedCount
	if err = s.postgres.ScanJobRepository.Complete(ctx, job.ID, stats); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.publishSnapshot(ctx, job.ID)
	s.log.Infof("scan %s completed: %d emails, %d senders", job.ID, stats.TotalEmailsScanned, stats.TotalSenders)
	return nil
}

// fetchWithProgress pulls metadata in listing order while interpolating the
// progress bar across the fetch phase
func (s *scanService) fetchWithProgress(ctx context.Context, job *models.ScanJob, accessToken string, ids []string) []*dto.GmailMessage {
	messages := make([]*dto.GmailMessage, 0, len(ids))

	for start := 0; start < len(ids); start += fetchChunkSize {
		end := start + fetchChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		messages = append(messages, s.gmail.FetchMetadata(ctx, accessToken, ids[start:end])...)

		progress := progressListed + (progressFetched-progressListed)*end/len(ids)
		s.updateProgress(ctx, job, progress, fmt.Sprintf("Fetched %d of %d messages", end, len(ids)))
	}

	if len(ids) == 0 {
		s.updateProgress(ctx, job, progressFetched, "Mailbox is empty")
	}

	return messages
}

func (s *scanService) purgeOwnerData(ctx context.Context, owner string) error {
	if err := s.postgres.EmailRecordRepository.DeleteByOwner(ctx, owner); err != nil {
		return err
	}
	if err := s.postgres.SenderSummaryRepository.DeleteByOwner(ctx, owner); err != nil {
		return err
	}
	return s.postgres.ScanJobRepository.DeleteByOwner(ctx, owner)
}

func (s *scanService) updateProgress(ctx context.Context, job *models.ScanJob, progress int, message string) {
	if err := s.postgres.ScanJobRepository.UpdateProgress(ctx, job.ID, progress, message); err != nil {
		s.log.Warnf("failed to update progress for scan %s: %v", job.ID, err)
		return
	}
	s.publishSnapshot(ctx, job.ID)
}

func (s *scanService) failScan(ctx context.Context, job *models.ScanJob, message string) {
	if err := s.postgres.ScanJobRepository.Fail(ctx, job.ID, message); err != nil {
		s.log.Errorf("failed to mark scan %s as failed: %v", job.ID, err)
	}
	s.publishSnapshot(ctx, job.ID)
}

// publishSnapshot pushes the current job row to subscribers; failures are
// logged and swallowed
func (s *scanService) publishSnapshot(ctx context.Context, scanID string) {
	if s.publisher == nil {
		return
	}
	job, err := s.postgres.ScanJobRepository.GetByID(ctx, scanID)
	if err != nil || job == nil {
		return
	}
	if err = s.publisher.PublishScanProgress(ctx, job); err != nil {
		s.log.Warnf("failed to publish progress for scan %s: %v", scanID, err)
	}
}

func (s *scanService) GetScan(ctx context.Context, scanID string) (*models.ScanJob, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ScanService.GetScan")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagScan(span, scanID)

	job, err := s.postgres.ScanJobRepository.GetByID(ctx, scanID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if job == nil {
		return nil, er.ErrScanNotFound
	}

	return job, nil
}

func (s *scanService) GetActiveScan(ctx context.Context, owner string) (*models.ScanJob, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ScanService.GetActiveScan")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, owner)

	return s.postgres.ScanJobRepository.GetActiveByOwner(ctx, owner)
}

func (s *scanService) ListSenderSummaries(ctx context.Context, scanID string) ([]models.SenderSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ScanService.ListSenderSummaries")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagScan(span, scanID)

	job, err := s.postgres.ScanJobRepository.GetByID(ctx, scanID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if job == nil {
		return nil, er.ErrScanNotFound
	}

	return s.postgres.SenderSummaryRepository.ListByScan(ctx, scanID)
}
