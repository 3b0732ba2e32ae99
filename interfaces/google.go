package interfaces

import "context"

// GoogleTokenService supplies a valid Gmail bearer token for an owner,
// refreshing and persisting it when the stored one has expired.
type GoogleTokenService interface {
	GetAccessToken(ctx context.Context, owner string) (string, error)
	SaveTokens(ctx context.Context, owner, accessToken, refreshToken string) error
}
