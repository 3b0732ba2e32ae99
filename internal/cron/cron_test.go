package cron

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsweep/mailsweep/config"
	"github.com/mailsweep/mailsweep/interfaces"
	"github.com/mailsweep/mailsweep/internal/enum"
	"github.com/mailsweep/mailsweep/internal/logger"
	"github.com/mailsweep/mailsweep/internal/models"
	"github.com/mailsweep/mailsweep/internal/repository"
	"github.com/mailsweep/mailsweep/internal/utils"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

type stubScanJobRepository struct {
	interfaces.ScanJobRepository

	mu     sync.Mutex
	stale  []models.ScanJob
	failed []string
}

func (s *stubScanJobRepository) GetStaleInProgress(ctx context.Context, olderThan time.Time) ([]models.ScanJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale, nil
}

func (s *stubScanJobRepository) Fail(ctx context.Context, id string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, id)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppConfig: &config.AppConfig{
			Logger: &logger.Config{
				LogLevel: "info",
			},
		},
	}
}

func TestNewCronManager(t *testing.T) {
	// Arrange
	cfg := testConfig()
	log := getLogger()
	repos := &repository.Repositories{}

	// Act
	cm := NewCronManager(cfg, log, repos)

	// Assert
	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.Equal(t, repos, cm.postgres)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_RegisterJobs(t *testing.T) {
	// Set environment variable for testing
	os.Setenv("CRON_SCHEDULE_HEARTBEAT", "0 * * * * *")
	os.Setenv("CRON_SCHEDULE_REAP_STALE_SCANS", "0 */10 * * * *")
	defer os.Unsetenv("CRON_SCHEDULE_HEARTBEAT")
	defer os.Unsetenv("CRON_SCHEDULE_REAP_STALE_SCANS")

	// Arrange
	cm := NewCronManager(testConfig(), getLogger(), &repository.Repositories{})
	c := cronv3.New(cronv3.WithSeconds())

	// Act
	cm.registerJobs(c)

	// Assert
	assert.Len(t, cm.jobIDs, 2)
	assert.Contains(t, cm.jobIDs, "heartbeat")
	assert.Contains(t, cm.jobIDs, "reap_stale_scans")
}

func TestCronManager_ReapStaleScans(t *testing.T) {
	// Arrange
	stub := &stubScanJobRepository{
		stale: []models.ScanJob{
			{ID: "scan_stale1", Owner: "owner-1", Status: enum.ScanStatusInProgress, UpdatedAt: utils.Now().Add(-3 * time.Hour)},
			{ID: "scan_stale2", Owner: "owner-2", Status: enum.ScanStatusInProgress, UpdatedAt: utils.Now().Add(-4 * time.Hour)},
		},
	}
	cm := NewCronManager(testConfig(), getLogger(), &repository.Repositories{ScanJobRepository: stub})

	// Act
	cm.reapStaleScans()

	// Assert
	require.Len(t, stub.failed, 2)
	assert.Contains(t, stub.failed, "scan_stale1")
	assert.Contains(t, stub.failed, "scan_stale2")
}

func TestCronManager_ReapStaleScans_NothingToDo(t *testing.T) {
	stub := &stubScanJobRepository{}
	cm := NewCronManager(testConfig(), getLogger(), &repository.Repositories{ScanJobRepository: stub})

	cm.reapStaleScans()

	assert.Empty(t, stub.failed)
}

func TestCronManager_StartAndStop(t *testing.T) {
	cm := NewCronManager(testConfig(), getLogger(), &repository.Repositories{ScanJobRepository: &stubScanJobRepository{}})

	cm.Start()
	require.NotNil(t, cm.cron)
	cm.Stop()
}
