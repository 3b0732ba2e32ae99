package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsweep/mailsweep/dto"
)

func message(headers map[string]string, labels []string) *dto.GmailMessage {
	payload := &dto.GmailPayload{}
	for name, value := range headers {
		payload.Headers = append(payload.Headers, dto.GmailHeader{Name: name, Value: value})
	}
	return &dto.GmailMessage{
		ID:           "m1",
		LabelIDs:     labels,
		Payload:      payload,
		InternalDate: "1700000000000",
		SizeEstimate: 2048,
	}
}

func TestNormalizeMessage_SenderAddressFromAngleBrackets(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{"display name with brackets", `Newsletter Team <News@Example.COM>`, "news@example.com"},
		{"bare address", "alerts@example.com", "alerts@example.com"},
		{"bare address with whitespace", "  Alerts@Example.com  ", "alerts@example.com"},
		{"quoted display name", `"Support, Inc" <support@example.com>`, "support@example.com"},
		{"empty header", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NormalizeMessage("scan_1", "owner-1", message(map[string]string{"From": tt.from}, nil))
			assert.Equal(t, tt.want, record.SenderAddress)
		})
	}
}

func TestNormalizeMessage_DisplayName(t *testing.T) {
	record := NormalizeMessage("scan_1", "owner-1", message(map[string]string{"From": `"Daily Digest" <digest@example.com>`}, nil))
	require.NotNil(t, record.SenderDisplayName)
	assert.Equal(t, "Daily Digest", *record.SenderDisplayName)

	record = NormalizeMessage("scan_1", "owner-1", message(map[string]string{"From": "digest@example.com"}, nil))
	assert.Nil(t, record.SenderDisplayName)
}

func TestNormalizeMessage_UnreadLabelMarksUnopened(t *testing.T) {
	record := NormalizeMessage("scan_1", "owner-1", message(map[string]string{"From": "a@b.c"}, []string{"INBOX", "UNREAD"}))
	assert.False(t, record.IsOpened)

	record = NormalizeMessage("scan_1", "owner-1", message(map[string]string{"From": "a@b.c"}, []string{"INBOX"}))
	assert.True(t, record.IsOpened)
}

func TestNormalizeMessage_Unsubscribe(t *testing.T) {
	record := NormalizeMessage("scan_1", "owner-1", message(map[string]string{
		"From":             "promo@example.com",
		"List-Unsubscribe": "<https://example.com/unsub>",
	}, nil))
	assert.True(t, record.HasUnsubscribe)
	require.NotNil(t, record.UnsubscribeTarget)
	assert.Equal(t, "<https://example.com/unsub>", *record.UnsubscribeTarget)

	record = NormalizeMessage("scan_1", "owner-1", message(map[string]string{"From": "promo@example.com"}, nil))
	assert.False(t, record.HasUnsubscribe)
	assert.Nil(t, record.UnsubscribeTarget)
}

func TestNormalizeMessage_Defaults(t *testing.T) {
	m := &dto.GmailMessage{ID: "m2"}
	record := NormalizeMessage("scan_1", "owner-1", m)

	assert.Equal(t, "m2", record.MessageID)
	assert.Equal(t, "", record.SenderAddress)
	assert.Nil(t, record.Subject)
	assert.Zero(t, record.SizeBytes)
	assert.True(t, record.ReceivedAt.IsZero())
	assert.True(t, record.IsOpened)
}

func TestNormalizeMessage_InternalDate(t *testing.T) {
	record := NormalizeMessage("scan_1", "owner-1", message(map[string]string{"From": "a@b.c"}, nil))
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), record.ReceivedAt)
}
