package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsweep/mailsweep/config"
	er "github.com/mailsweep/mailsweep/internal/errors"
	"github.com/mailsweep/mailsweep/internal/models"
	"github.com/mailsweep/mailsweep/internal/repository"
	"github.com/mailsweep/mailsweep/internal/utils"
)

type fakeUserTokenRepository struct {
	tokens map[string]*models.UserToken
}

func newFakeUserTokenRepository() *fakeUserTokenRepository {
	return &fakeUserTokenRepository{tokens: map[string]*models.UserToken{}}
}

func (f *fakeUserTokenRepository) GetByOwner(ctx context.Context, owner string) (*models.UserToken, error) {
	token, ok := f.tokens[owner]
	if !ok {
		return nil, nil
	}
	copied := *token
	return &copied, nil
}

func (f *fakeUserTokenRepository) Save(ctx context.Context, token *models.UserToken) error {
	copied := *token
	f.tokens[token.Owner] = &copied
	return nil
}

func (f *fakeUserTokenRepository) UpdateAccessToken(ctx context.Context, owner, accessToken string, expiresAt time.Time) error {
	if token, ok := f.tokens[owner]; ok {
		token.AccessToken = accessToken
		token.ExpiresAt = &expiresAt
	}
	return nil
}

func newTestService(tokenURL string, repo *fakeUserTokenRepository) *googleTokenService {
	return &googleTokenService{
		cfg: &config.GoogleConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			TokenURL:     tokenURL,
		},
		postgres: &repository.Repositories{UserTokenRepository: repo},
	}
}

func TestGetAccessToken_NoLinkedIdentity(t *testing.T) {
	svc := newTestService("http://localhost", newFakeUserTokenRepository())

	_, err := svc.GetAccessToken(context.Background(), "owner-1")

	assert.ErrorIs(t, err, er.ErrNoLinkedIdentity)
}

func TestGetAccessToken_ReturnsFreshTokenWithoutRefresh(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	repo := newFakeUserTokenRepository()
	expiresAt := utils.Now().Add(time.Hour)
	repo.tokens["owner-1"] = &models.UserToken{
		Owner:       "owner-1",
		AccessToken: "fresh-token",
		ExpiresAt:   &expiresAt,
	}
	svc := newTestService(server.URL, repo)

	token, err := svc.GetAccessToken(context.Background(), "owner-1")

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.False(t, called, "token endpoint should not be hit for a fresh token")
}

func TestGetAccessToken_UsesUnflaggedTokenAsIs(t *testing.T) {
	repo := newFakeUserTokenRepository()
	repo.tokens["owner-1"] = &models.UserToken{
		Owner:       "owner-1",
		AccessToken: "caller-supplied",
	}
	svc := newTestService("http://localhost", repo)

	token, err := svc.GetAccessToken(context.Background(), "owner-1")

	require.NoError(t, err)
	assert.Equal(t, "caller-supplied", token)
}

func TestGetAccessToken_RefreshesAndPersistsBeforeReturning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-id", r.PostFormValue("client_id"))
		assert.Equal(t, "client-secret", r.PostFormValue("client_secret"))
		assert.Equal(t, "refresh-me", r.PostFormValue("refresh_token"))
		assert.Equal(t, "refresh_token", r.PostFormValue("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-token","expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer server.Close()

	repo := newFakeUserTokenRepository()
	expiredAt := utils.Now().Add(-time.Hour)
	repo.tokens["owner-1"] = &models.UserToken{
		Owner:        "owner-1",
		AccessToken:  "stale-token",
		RefreshToken: "refresh-me",
		ExpiresAt:    &expiredAt,
	}
	svc := newTestService(server.URL, repo)

	token, err := svc.GetAccessToken(context.Background(), "owner-1")

	require.NoError(t, err)
	assert.Equal(t, "new-token", token)

	stored := repo.tokens["owner-1"]
	assert.Equal(t, "new-token", stored.AccessToken)
	require.NotNil(t, stored.ExpiresAt)
	assert.True(t, stored.ExpiresAt.After(utils.Now()))
}

func TestGetAccessToken_NoCredentialWhenNothingUsable(t *testing.T) {
	repo := newFakeUserTokenRepository()
	expiredAt := utils.Now().Add(-time.Hour)
	repo.tokens["owner-1"] = &models.UserToken{
		Owner:     "owner-1",
		ExpiresAt: &expiredAt,
	}
	svc := newTestService("http://localhost", repo)

	_, err := svc.GetAccessToken(context.Background(), "owner-1")

	assert.ErrorIs(t, err, er.ErrNoCredential)
}

func TestGetAccessToken_NoCredentialWhenRefreshReturnsNoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Well-formed response, but no access token in it
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer server.Close()

	repo := newFakeUserTokenRepository()
	expiredAt := utils.Now().Add(-time.Hour)
	repo.tokens["owner-1"] = &models.UserToken{
		Owner:        "owner-1",
		AccessToken:  "stale-token",
		RefreshToken: "refresh-me",
		ExpiresAt:    &expiredAt,
	}
	svc := newTestService(server.URL, repo)

	_, err := svc.GetAccessToken(context.Background(), "owner-1")

	assert.ErrorIs(t, err, er.ErrNoCredential)
	assert.Equal(t, "stale-token", repo.tokens["owner-1"].AccessToken, "a failed refresh must not overwrite the stored credential")
}

func TestGetAccessToken_RefreshFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	repo := newFakeUserTokenRepository()
	expiredAt := utils.Now().Add(-time.Hour)
	repo.tokens["owner-1"] = &models.UserToken{
		Owner:        "owner-1",
		AccessToken:  "stale-token",
		RefreshToken: "revoked",
		ExpiresAt:    &expiredAt,
	}
	svc := newTestService(server.URL, repo)

	_, err := svc.GetAccessToken(context.Background(), "owner-1")

	assert.ErrorIs(t, err, er.ErrRefreshFailed)
}

func TestSaveTokens_Upserts(t *testing.T) {
	repo := newFakeUserTokenRepository()
	svc := newTestService("http://localhost", repo)

	err := svc.SaveTokens(context.Background(), "owner-1", "access", "refresh")

	require.NoError(t, err)
	stored := repo.tokens["owner-1"]
	require.NotNil(t, stored)
	assert.Equal(t, "access", stored.AccessToken)
	assert.Equal(t, "refresh", stored.RefreshToken)
	assert.Nil(t, stored.ExpiresAt)
}
