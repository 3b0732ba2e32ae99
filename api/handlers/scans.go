package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/mailsweep/mailsweep/dto"
	"github.com/mailsweep/mailsweep/interfaces"
	er "github.com/mailsweep/mailsweep/internal/errors"
	"github.com/mailsweep/mailsweep/internal/utils"
)

type ScansHandler struct {
	scanService  interfaces.ScanService
	tokenService interfaces.GoogleTokenService
}

func NewScansHandler(scanService interfaces.ScanService, tokenService interfaces.GoogleTokenService) *ScansHandler {
	return &ScansHandler{
		scanService:  scanService,
		tokenService: tokenService,
	}
}

// StartScan triggers a mailbox scan for the authenticated owner. An optional
// token pair in the body links (or refreshes) the owner's Google credential
// before the scan starts.
func (h *ScansHandler) StartScan() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := utils.ValidateOwner(ctx); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		owner := utils.GetOwnerFromContext(ctx)

		var request dto.StartScanRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		if request.AccessToken != "" || request.RefreshToken != "" {
			if err := h.tokenService.SaveTokens(ctx, owner, request.AccessToken, request.RefreshToken); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store credentials"})
				return
			}
		}

		scanID, err := h.scanService.StartScan(ctx, owner, request.Rescan)
		if err != nil {
			status := statusForScanError(err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, dto.StartScanResponse{ScanID: scanID})
	}
}

// GetScan returns one scan job with its progress and final statistics
func (h *ScansHandler) GetScan() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		job, err := h.scanService.GetScan(ctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, er.ErrScanNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if job.Owner != utils.GetOwnerFromContext(ctx) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
			return
		}

		c.JSON(http.StatusOK, job)
	}
}

// GetActiveScan returns the owner's running scan, or 204 when there is none
func (h *ScansHandler) GetActiveScan() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		job, err := h.scanService.GetActiveScan(ctx, utils.GetOwnerFromContext(ctx))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if job == nil {
			c.Status(http.StatusNoContent)
			return
		}

		c.JSON(http.StatusOK, job)
	}
}

// ListSenderSummaries returns the per-sender statistics of one scan, biggest
// senders first
func (h *ScansHandler) ListSenderSummaries() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		job, err := h.scanService.GetScan(ctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, er.ErrScanNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if job.Owner != utils.GetOwnerFromContext(ctx) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
			return
		}

		summaries, err := h.scanService.ListSenderSummaries(ctx, job.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"senders": summaries})
	}
}

func statusForScanError(err error) int {
	switch {
	case errors.Is(err, er.ErrNoLinkedIdentity):
		return http.StatusBadRequest
	case errors.Is(err, er.ErrNoCredential), errors.Is(err, er.ErrRefreshFailed):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
