package gmail

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"golang.org/x/net/context"

	"github.com/mailsweep/mailsweep/config"
	"github.com/mailsweep/mailsweep/dto"
	"github.com/mailsweep/mailsweep/interfaces"
	"github.com/mailsweep/mailsweep/internal/tracing"
)

const (
	// maxListPageSize is the largest page the listing endpoint accepts
	maxListPageSize = 500
	// maxMessagesPerScan caps a single scan so a huge mailbox cannot run away
	maxMessagesPerScan = 10000
	// fetchBatchSize bounds how many metadata requests are in flight at once
	fetchBatchSize = 50

	requestTimeout = 30 * time.Second
)

type gmailClient struct {
	cfg        *config.GoogleConfig
	httpClient *http.Client
}

func NewGmailClient(cfg *config.GoogleConfig) interfaces.GmailClient {
	return &gmailClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// ListMessageIDs pages through the mailbox listing until Gmail stops
// returning a next page token or the scan cap is reached.
func (c *gmailClient) ListMessageIDs(ctx context.Context, accessToken string) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GmailClient.ListMessageIDs")
	defer span.Finish()
	tracing.TagComponentService(span)

	ids := make([]string, 0, maxListPageSize)
	pageToken := ""

	for {
		page, err := c.listPage(ctx, accessToken, pageToken)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}

		for _, ref := range page.Messages {
			ids = append(ids, ref.ID)
		}

		if len(ids) >= maxMessagesPerScan {
			ids = ids[:maxMessagesPerScan]
			break
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	span.LogFields(tracingLog.Int("messageCount", len(ids)))
	return ids, nil
}

func (c *gmailClient) listPage(ctx context.Context, accessToken, pageToken string) (*dto.GmailListResponse, error) {
	params := url.Values{}
	params.Add("maxResults", fmt.Sprintf("%d", maxListPageSize))
	if pageToken != "" {
		params.Add("pageToken", pageToken)
	}

	endpoint := fmt.Sprintf("%s/users/me/messages?%s", c.cfg.GmailAPIURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build Gmail list request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call Gmail list endpoint")
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read Gmail list response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Gmail list endpoint returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	var page dto.GmailListResponse
	if err = json.Unmarshal(responseBody, &page); err != nil {
		return nil, errors.Wrap(err, "failed to parse Gmail list response")
	}

	return &page, nil
}

// FetchMetadata retrieves header metadata for every id, batch by batch. The
// result keeps one slot per input id in input order; a message whose fetch
// fails leaves its slot nil rather than failing the whole scan.
func (c *gmailClient) FetchMetadata(ctx context.Context, accessToken string, ids []string) []*dto.GmailMessage {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GmailClient.FetchMetadata")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.LogFields(tracingLog.Int("messageCount", len(ids)))

	messages := make([]*dto.GmailMessage, len(ids))

	for start := 0; start < len(ids); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				message, err := c.fetchMessage(ctx, accessToken, ids[idx])
				if err != nil {
					tracing.TraceErr(span, err)
					return
				}
				messages[idx] = message
			}(i)
		}
		wg.Wait()
	}

	return messages
}

func (c *gmailClient) fetchMessage(ctx context.Context, accessToken, id string) (*dto.GmailMessage, error) {
	params := url.Values{}
	params.Add("format", "metadata")
	params.Add("metadataHeaders", "From")
	params.Add("metadataHeaders", "Subject")
	params.Add("metadataHeaders", "List-Unsubscribe")

	endpoint := fmt.Sprintf("%s/users/me/messages/%s?%s", c.cfg.GmailAPIURL, id, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build Gmail message request for %s", id)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch Gmail message %s", id)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read Gmail message %s", id)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Gmail message endpoint returned status %d for %s", resp.StatusCode, id)
	}

	var message dto.GmailMessage
	if err = json.Unmarshal(responseBody, &message); err != nil {
		return nil, errors.Wrapf(err, "failed to parse Gmail message %s", id)
	}

	return &message, nil
}
