package google

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"golang.org/x/net/context"

	"github.com/mailsweep/mailsweep/config"
	"github.com/mailsweep/mailsweep/interfaces"
	er "github.com/mailsweep/mailsweep/internal/errors"
	"github.com/mailsweep/mailsweep/internal/models"
	"github.com/mailsweep/mailsweep/internal/repository"
	"github.com/mailsweep/mailsweep/internal/tracing"
	"github.com/mailsweep/mailsweep/internal/utils"
)

// expirySkew keeps a safety margin so a token that is about to lapse
// mid-scan gets refreshed up front
const expirySkew = time.Minute

type googleTokenService struct {
	cfg      *config.GoogleConfig
	postgres *repository.Repositories
}

func NewGoogleTokenService(cfg *config.GoogleConfig, postgres *repository.Repositories) interfaces.GoogleTokenService {
	return &googleTokenService{
		cfg:      cfg,
		postgres: postgres,
	}
}

// GetAccessToken returns a bearer token usable against the Gmail API. The
// stored access token wins while it is still fresh; otherwise the refresh
// credential is exchanged and the new token is persisted before returning.
func (s *googleTokenService) GetAccessToken(ctx context.Context, owner string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GoogleTokenService.GetAccessToken")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, owner)

	token, err := s.postgres.UserTokenRepository.GetByOwner(ctx, owner)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	if token == nil {
		return "", er.ErrNoLinkedIdentity
	}

	if token.AccessTokenValid(utils.Now(), expirySkew) {
		span.LogFields(tracingLog.Bool("refreshed", false))
		return token.AccessToken, nil
	}

	if token.RefreshToken == "" {
		return "", er.ErrNoCredential
	}

	accessToken, expiresAt, err := s.refreshAccessToken(ctx, token.RefreshToken)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	// Persist before handing the token out so a concurrent caller reuses it
	if err = s.postgres.UserTokenRepository.UpdateAccessToken(ctx, owner, accessToken, expiresAt); err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	span.LogFields(tracingLog.Bool("refreshed", true))
	return accessToken, nil
}

func (s *googleTokenService) refreshAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "GoogleTokenService.refreshAccessToken")
	defer span.Finish()
	tracing.TagComponentService(span)

	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" {
		err := errors.New("Google OAuth client configuration is missing")
		tracing.TraceErr(span, err)
		return "", time.Time{}, er.ErrNoCredential
	}

	params := url.Values{}
	params.Add("client_id", s.cfg.ClientID)
	params.Add("client_secret", s.cfg.ClientSecret)
	params.Add("refresh_token", refreshToken)
	params.Add("grant_type", "refresh_token")

	resp, err := http.PostForm(s.cfg.TokenURL, params)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "failed to call Google token endpoint"))
		return "", time.Time{}, er.ErrRefreshFailed
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "failed to read Google token response"))
		return "", time.Time{}, er.ErrRefreshFailed
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.LogFields(tracingLog.Int("statusCode", resp.StatusCode), tracingLog.String("responseBody", string(responseBody)))
		return "", time.Time{}, er.ErrRefreshFailed
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err = json.Unmarshal(responseBody, &result); err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "failed to parse Google token response"))
		return "", time.Time{}, er.ErrRefreshFailed
	}

	if result.AccessToken == "" {
		return "", time.Time{}, er.ErrNoCredential
	}

	expiresIn := result.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	expiresAt := utils.Now().Add(time.Duration(expiresIn) * time.Second)

	return result.AccessToken, expiresAt, nil
}

// SaveTokens upserts a caller-supplied credential pair for the owner. The
// access token arrives without expiry information, so it is stored unflagged
// and used as-is until Gmail rejects it.
func (s *googleTokenService) SaveTokens(ctx context.Context, owner, accessToken, refreshToken string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GoogleTokenService.SaveTokens")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagOwner(span, owner)

	token := &models.UserToken{
		Owner:        owner,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	return s.postgres.UserTokenRepository.Save(ctx, token)
}
