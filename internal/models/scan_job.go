package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailsweep/mailsweep/internal/enum"
	"github.com/mailsweep/mailsweep/internal/utils"
)

// ScanJob represents one mailbox scan attempt and its lifecycle
type ScanJob struct {
	ID     string          `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Owner  string          `gorm:"column:owner;type:varchar(255);index;not null" json:"owner"`
	Status enum.ScanStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`

	// Progress is 0-100 and never decreases while the scan is running
	Progress        int     `gorm:"column:progress;not null;default:0" json:"progress"`
	ProgressMessage *string `gorm:"column:progress_message;type:text" json:"progress_message,omitempty"`

	StartedAt   time.Time  `gorm:"column:started_at;type:timestamp;not null" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at;type:timestamp" json:"completed_at,omitempty"`

	// Final statistics, written once on completion
	TotalEmailsScanned int64 `gorm:"column:total_emails_scanned;not null;default:0" json:"total_emails_scanned"`
	TotalSenders       int64 `gorm:"column:total_senders;not null;default:0" json:"total_senders"`
	SpaceScanned       int64 `gorm:"column:space_scanned;not null;default:0" json:"space_scanned"`
	DeletableSenders   int64 `gorm:"column:deletable_senders;not null;default:0" json:"deletable_senders"`
	DeletableMails     int64 `gorm:"column:deletable_mails;not null;default:0" json:"deletable_mails"`
	RecoverableSpace   int64 `gorm:"column:recoverable_space;not null;default:0" json:"recoverable_space"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"-"`
}

func (ScanJob) TableName() string {
	return "scan_jobs"
}

func (s *ScanJob) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = utils.GenerateNanoIDWithPrefix("scan", 24)
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = utils.Now()
	}
	s.CreatedAt = utils.Now()
	return nil
}
