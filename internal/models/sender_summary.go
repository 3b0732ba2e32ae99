package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailsweep/mailsweep/internal/utils"
)

// SenderSummary aggregates one sender's statistics within a single scan
type SenderSummary struct {
	ID     string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	ScanID string `gorm:"column:scan_id;type:varchar(50);index;not null;uniqueIndex:idx_sender_summaries_scan_sender" json:"scan_id"`
	Owner  string `gorm:"column:owner;type:varchar(255);index;not null" json:"owner"`

	SenderAddress     string  `gorm:"column:sender_address;type:varchar(255);not null;uniqueIndex:idx_sender_summaries_scan_sender" json:"sender_address"`
	SenderDisplayName *string `gorm:"column:sender_display_name;type:varchar(255)" json:"sender_display_name,omitempty"`

	TotalMessages  int64 `gorm:"column:total_messages;not null;default:0" json:"total_messages"`
	UnopenedCount  int64 `gorm:"column:unopened_count;not null;default:0" json:"unopened_count"`
	TotalSizeBytes int64 `gorm:"column:total_size_bytes;not null;default:0" json:"total_size_bytes"`
	HasUnsubscribe bool  `gorm:"column:has_unsubscribe;not null;default:false" json:"has_unsubscribe"`

	// Computed once after aggregation, rounded to 2 decimals
	UnopenedPercentage float64 `gorm:"column:unopened_percentage;not null;default:0" json:"unopened_percentage"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"-"`
}

func (SenderSummary) TableName() string {
	return "sender_summaries"
}

func (s *SenderSummary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = utils.GenerateNanoIDWithPrefix("sender", 24)
	}
	s.CreatedAt = utils.Now()
	return nil
}
