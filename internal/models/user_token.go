package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailsweep/mailsweep/internal/utils"
)

// UserToken stores the Google OAuth credential pair for one owner
type UserToken struct {
	ID    string `gorm:"column:id;type:varchar(50);primaryKey"`
	Owner string `gorm:"column:owner;type:varchar(255);uniqueIndex;not null"`

	AccessToken  string     `gorm:"column:access_token;type:text"`
	RefreshToken string     `gorm:"column:refresh_token;type:text"`
	ExpiresAt    *time.Time `gorm:"column:expires_at;type:timestamp"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (UserToken) TableName() string {
	return "user_tokens"
}

func (t *UserToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateNanoIDWithPrefix("token", 24)
	}
	t.CreatedAt = utils.Now()
	return nil
}

// AccessTokenValid reports whether the stored short-lived token can be used
// as-is. A token with no recorded expiry is not flagged expired and is
// returned unchanged.
func (t *UserToken) AccessTokenValid(now time.Time, skew time.Duration) bool {
	if t.AccessToken == "" {
		return false
	}
	if t.ExpiresAt == nil {
		return true
	}
	return now.Add(skew).Before(*t.ExpiresAt)
}
