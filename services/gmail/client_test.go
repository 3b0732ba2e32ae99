package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsweep/mailsweep/config"
	"github.com/mailsweep/mailsweep/dto"
)

func newTestClient(baseURL string) *gmailClient {
	client := NewGmailClient(&config.GoogleConfig{GmailAPIURL: baseURL})
	return client.(*gmailClient)
}

func TestListMessageIDs_PagesUntilExhausted(t *testing.T) {
	pages := map[string]dto.GmailListResponse{
		"": {
			Messages:      []dto.GmailMessageRef{{ID: "m1"}, {ID: "m2"}},
			NextPageToken: "page-2",
		},
		"page-2": {
			Messages: []dto.GmailMessageRef{{ID: "m3"}},
		},
	}

	var seenTokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		require.Equal(t, "500", r.URL.Query().Get("maxResults"))

		token := r.URL.Query().Get("pageToken")
		seenTokens = append(seenTokens, token)
		json.NewEncoder(w).Encode(pages[token])
	}))
	defer server.Close()

	ids, err := newTestClient(server.URL).ListMessageIDs(context.Background(), "token-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids)
	assert.Equal(t, []string{"", "page-2"}, seenTokens)
}

func TestListMessageIDs_EmptyMailbox(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultSizeEstimate":0}`))
	}))
	defer server.Close()

	ids, err := newTestClient(server.URL).ListMessageIDs(context.Background(), "token-1")

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListMessageIDs_StopsAtScanCap(t *testing.T) {
	// Endless pagination: every page is full and advertises a next page
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := dto.GmailListResponse{NextPageToken: "more"}
		for i := 0; i < maxListPageSize; i++ {
			page.Messages = append(page.Messages, dto.GmailMessageRef{ID: fmt.Sprintf("m%d", i)})
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	ids, err := newTestClient(server.URL).ListMessageIDs(context.Background(), "token-1")

	require.NoError(t, err)
	assert.Len(t, ids, maxMessagesPerScan)
}

func TestListMessageIDs_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListMessageIDs(context.Background(), "expired")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchMetadata_PreservesOrderAndNilsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		id := parts[len(parts)-1]

		require.Equal(t, "metadata", r.URL.Query().Get("format"))
		assert.ElementsMatch(t, []string{"From", "Subject", "List-Unsubscribe"}, r.URL.Query()["metadataHeaders"])

		if id == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(dto.GmailMessage{ID: id, SizeEstimate: 1024})
	}))
	defer server.Close()

	ids := []string{"a", "broken", "c"}
	messages := newTestClient(server.URL).FetchMetadata(context.Background(), "token-1", ids)

	require.Len(t, messages, 3)
	require.NotNil(t, messages[0])
	assert.Equal(t, "a", messages[0].ID)
	assert.Nil(t, messages[1])
	require.NotNil(t, messages[2])
	assert.Equal(t, "c", messages[2].ID)
}

func TestFetchMetadata_ManyMessagesAcrossBatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		json.NewEncoder(w).Encode(dto.GmailMessage{ID: parts[len(parts)-1]})
	}))
	defer server.Close()

	ids := make([]string, 0, fetchBatchSize*2+7)
	for i := 0; i < cap(ids); i++ {
		ids = append(ids, fmt.Sprintf("m%d", i))
	}

	messages := newTestClient(server.URL).FetchMetadata(context.Background(), "token-1", ids)

	require.Len(t, messages, len(ids))
	for i, message := range messages {
		require.NotNil(t, message)
		assert.Equal(t, ids[i], message.ID)
	}
}
