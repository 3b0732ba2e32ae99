package repository

import (
	"gorm.io/gorm"

	"github.com/mailsweep/mailsweep/interfaces"
	"github.com/mailsweep/mailsweep/internal/models"
)

type Repositories struct {
	ScanJobRepository       interfaces.ScanJobRepository
	EmailRecordRepository   interfaces.EmailRecordRepository
	SenderSummaryRepository interfaces.SenderSummaryRepository
	UserTokenRepository     interfaces.UserTokenRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		ScanJobRepository:       NewScanJobRepository(db),
		EmailRecordRepository:   NewEmailRecordRepository(db),
		SenderSummaryRepository: NewSenderSummaryRepository(db),
		UserTokenRepository:     NewUserTokenRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ScanJob{},
		&models.EmailRecord{},
		&models.SenderSummary{},
		&models.UserToken{},
	)
}
