package interfaces

import (
	"context"
	"time"

	"github.com/mailsweep/mailsweep/internal/models"
)

type UserTokenRepository interface {
	// GetByOwner returns nil when the owner has no linked credential
	GetByOwner(ctx context.Context, owner string) (*models.UserToken, error)
	Save(ctx context.Context, token *models.UserToken) error
	UpdateAccessToken(ctx context.Context, owner, accessToken string, expiresAt time.Time) error
}
