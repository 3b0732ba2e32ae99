package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailsweep/mailsweep/internal/utils"
)

// EmailRecord is the normalized header metadata of one scanned message.
// Records are append-only; a rescan purges and rebuilds them wholesale.
type EmailRecord struct {
	ID        string `gorm:"column:id;type:varchar(50);primaryKey"`
	ScanID    string `gorm:"column:scan_id;type:varchar(50);index;not null;uniqueIndex:idx_email_records_scan_message"`
	Owner     string `gorm:"column:owner;type:varchar(255);index;not null"`
	MessageID string `gorm:"column:message_id;type:varchar(255);not null;uniqueIndex:idx_email_records_scan_message"`

	SenderAddress     string  `gorm:"column:sender_address;type:varchar(255);index;not null"`
	SenderDisplayName *string `gorm:"column:sender_display_name;type:varchar(255)"`
	Subject           *string `gorm:"column:subject;type:varchar(1000)"`

	ReceivedAt time.Time `gorm:"column:received_at;type:timestamp;index"`
	SizeBytes  int64     `gorm:"column:size_bytes;not null;default:0"`
	IsOpened   bool      `gorm:"column:is_opened;not null;default:false"`

	HasUnsubscribe    bool    `gorm:"column:has_unsubscribe;not null;default:false"`
	UnsubscribeTarget *string `gorm:"column:unsubscribe_target;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
}

func (EmailRecord) TableName() string {
	return "email_records"
}

func (e *EmailRecord) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("email", 24)
	}
	e.CreatedAt = utils.Now()
	return nil
}
