package interfaces

import (
	"context"

	"github.com/mailsweep/mailsweep/dto"
)

// GmailClient talks to the Gmail REST API with a bearer token
type GmailClient interface {
	// ListMessageIDs pages through the listing endpoint until exhaustion
	// or the safety cap, whichever comes first.
	ListMessageIDs(ctx context.Context, accessToken string) ([]string, error)
	// FetchMetadata retrieves header metadata for each id in bounded
	// concurrent batches. The result has one slot per input id, in input
	// order; a failed fetch leaves its slot nil.
	FetchMetadata(ctx context.Context, accessToken string, ids []string) []*dto.GmailMessage
}
