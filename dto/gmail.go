package dto

// Wire shapes for the Gmail REST API, reduced to the fields the scan reads.

type GmailMessageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId,omitempty"`
}

type GmailListResponse struct {
	Messages           []GmailMessageRef `json:"messages,omitempty"`
	NextPageToken      string            `json:"nextPageToken,omitempty"`
	ResultSizeEstimate int64             `json:"resultSizeEstimate,omitempty"`
}

type GmailHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type GmailPayload struct {
	Headers []GmailHeader `json:"headers,omitempty"`
}

type GmailMessage struct {
	ID       string        `json:"id"`
	LabelIDs []string      `json:"labelIds,omitempty"`
	Payload  *GmailPayload `json:"payload,omitempty"`
	// Gmail serializes the epoch-millis timestamp as a string
	InternalDate string `json:"internalDate,omitempty"`
	SizeEstimate int64  `json:"sizeEstimate,omitempty"`
}

// Header returns the named header's value, or "" when absent
func (m *GmailMessage) Header(name string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// HasLabel reports whether the label set contains the given marker
func (m *GmailMessage) HasLabel(label string) bool {
	if m == nil {
		return false
	}
	for _, l := range m.LabelIDs {
		if l == label {
			return true
		}
	}
	return false
}
