package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/mailsweep/mailsweep/interfaces"
	"github.com/mailsweep/mailsweep/internal/models"
	"github.com/mailsweep/mailsweep/internal/tracing"
	"github.com/mailsweep/mailsweep/internal/utils"
)

type userTokenRepository struct {
	db *gorm.DB
}

func NewUserTokenRepository(db *gorm.DB) interfaces.UserTokenRepository {
	return &userTokenRepository{db: db}
}

func (r *userTokenRepository) GetByOwner(ctx context.Context, owner string) (*models.UserToken, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userTokenRepository.GetByOwner")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagOwner(span, owner)

	var token models.UserToken
	result := r.db.WithContext(ctx).Where("owner = ?", owner).First(&token)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil // No linked credential
		}
		tracing.TraceErr(span, result.Error)
		return nil, fmt.Errorf("failed to get user token: %w", result.Error)
	}

	return &token, nil
}

// Save upserts the owner's credential pair
func (r *userTokenRepository) Save(ctx context.Context, token *models.UserToken) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userTokenRepository.Save")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagOwner(span, token.Owner)

	// Try to update first
	result := r.db.WithContext(ctx).
		Model(&models.UserToken{}).
		Where("owner = ?", token.Owner).
		Updates(map[string]interface{}{
			"access_token":  token.AccessToken,
			"refresh_token": token.RefreshToken,
			"expires_at":    token.ExpiresAt,
			"updated_at":    utils.Now(),
		})

	// If no record was updated, create a new one
	if result.RowsAffected == 0 {
		result = r.db.WithContext(ctx).Create(token)
	}

	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to save user token: %w", result.Error)
	}

	return nil
}

func (r *userTokenRepository) UpdateAccessToken(ctx context.Context, owner, accessToken string, expiresAt time.Time) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userTokenRepository.UpdateAccessToken")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagOwner(span, owner)

	result := r.db.WithContext(ctx).
		Model(&models.UserToken{}).
		Where("owner = ?", owner).
		Updates(map[string]interface{}{
			"access_token": accessToken,
			"expires_at":   expiresAt,
			"updated_at":   utils.Now(),
		})

	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to update access token: %w", result.Error)
	}

	return nil
}
