package scan

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mailsweep/mailsweep/dto"
	"github.com/mailsweep/mailsweep/internal/models"
	"github.com/mailsweep/mailsweep/internal/utils"
)

const unreadLabel = "UNREAD"

// addressPattern pulls the address out of a "Display Name <addr>" From header
var addressPattern = regexp.MustCompile(`<(.+?)>`)

// NormalizeMessage turns raw Gmail metadata into an email record. The sender
// address is the canonical aggregation key: lowercased, trimmed, extracted
// from angle brackets when present, otherwise the raw header value.
func NormalizeMessage(scanID, owner string, message *dto.GmailMessage) models.EmailRecord {
	from := message.Header("From")

	record := models.EmailRecord{
		ScanID:        scanID,
		Owner:         owner,
		MessageID:     message.ID,
		SenderAddress: normalizeSenderAddress(from),
		ReceivedAt:    parseInternalDate(message.InternalDate),
		IsOpened:      !message.HasLabel(unreadLabel),
	}

	if name := senderDisplayName(from); name != "" {
		record.SenderDisplayName = utils.StringPtr(name)
	}
	if subject := message.Header("Subject"); subject != "" {
		record.Subject = utils.StringPtr(subject)
	}
	if message.SizeEstimate > 0 {
		record.SizeBytes = message.SizeEstimate
	}
	if unsubscribe := message.Header("List-Unsubscribe"); unsubscribe != "" {
		record.HasUnsubscribe = true
		record.UnsubscribeTarget = utils.StringPtr(unsubscribe)
	}

	return record
}

func normalizeSenderAddress(from string) string {
	address := from
	if match := addressPattern.FindStringSubmatch(from); match != nil {
		address = match[1]
	}
	return strings.ToLower(strings.TrimSpace(address))
}

func senderDisplayName(from string) string {
	name := from
	if idx := strings.Index(from, "<"); idx >= 0 {
		name = from[:idx]
	} else {
		// A bare address carries no display name
		return ""
	}
	name = strings.TrimSpace(name)
	name = strings.Trim(name, `"`)
	return strings.TrimSpace(name)
}

func parseInternalDate(internalDate string) time.Time {
	millis, err := strconv.ParseInt(internalDate, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(millis).UTC()
}
