package dto

import (
	"time"

	"github.com/mailsweep/mailsweep/internal/enum"
	"github.com/mailsweep/mailsweep/internal/models"
)

// StartScanRequest is the trigger payload. The optional token pair supports
// the mode where the browser client passes Google tokens through after
// sign-in instead of relying on a previously linked credential.
type StartScanRequest struct {
	Rescan       bool   `json:"rescan"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type StartScanResponse struct {
	ScanID string `json:"scan_id"`
}

// ScanProgressEvent is the snapshot published on every progress update
type ScanProgressEvent struct {
	ScanID          string          `json:"scan_id"`
	Owner           string          `json:"owner"`
	Status          enum.ScanStatus `json:"status"`
	Progress        int             `json:"progress"`
	ProgressMessage string          `json:"progress_message,omitempty"`
	EmittedAt       time.Time       `json:"emitted_at"`
}

func ScanProgressEventFrom(job *models.ScanJob, now time.Time) ScanProgressEvent {
	event := ScanProgressEvent{
		ScanID:    job.ID,
		Owner:     job.Owner,
		Status:    job.Status,
		Progress:  job.Progress,
		EmittedAt: now,
	}
	if job.ProgressMessage != nil {
		event.ProgressMessage = *job.ProgressMessage
	}
	return event
}
