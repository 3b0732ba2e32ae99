package scan

import (
	"math"

	"github.com/mailsweep/mailsweep/interfaces"
	"github.com/mailsweep/mailsweep/internal/models"
)

// deletableThreshold marks a sender as bulk-deletable when the rounded share
// of unopened mail reaches it
const deletableThreshold = 75.0

// AggregateSenders folds email records into one summary per sender address.
// The display name is the first non-empty one seen, the unsubscribe flag is
// sticky, and the unopened percentage is computed once after the fold.
// Summaries come back in first-seen sender order.
func AggregateSenders(records []models.EmailRecord) []models.SenderSummary {
	index := map[string]int{}
	summaries := make([]models.SenderSummary, 0)

	for _, record := range records {
		idx, seen := index[record.SenderAddress]
		if !seen {
			idx = len(summaries)
			index[record.SenderAddress] = idx
			summaries = append(summaries, models.SenderSummary{
				ScanID:        record.ScanID,
				Owner:         record.Owner,
				SenderAddress: record.SenderAddress,
			})
		}

		summary := &summaries[idx]
		summary.TotalMessages++
		summary.TotalSizeBytes += record.SizeBytes
		if !record.IsOpened {
			summary.UnopenedCount++
		}
		if record.HasUnsubscribe {
			summary.HasUnsubscribe = true
		}
		if summary.SenderDisplayName == nil && record.SenderDisplayName != nil {
			summary.SenderDisplayName = record.SenderDisplayName
		}
	}

	for i := range summaries {
		summaries[i].UnopenedPercentage = roundPercentage(summaries[i].UnopenedCount, summaries[i].TotalMessages)
	}

	return summaries
}

// ComputeCompletionStats derives the final scan statistics from the folded
// summaries. A sender counts as deletable when its unopened share reaches
// the threshold.
func ComputeCompletionStats(records []models.EmailRecord, summaries []models.SenderSummary) interfaces.ScanCompletionStats {
	stats := interfaces.ScanCompletionStats{
		TotalEmailsScanned: int64(len(records)),
		TotalSenders:       int64(len(summaries)),
	}

	for _, record := range records {
		stats.SpaceScanned += record.SizeBytes
	}

	for _, summary := range summaries {
		if summary.UnopenedPercentage >= deletableThreshold {
			stats.DeletableSenders++
			stats.DeletableMails += summary.TotalMessages
			stats.RecoverableSpace += summary.TotalSizeBytes
		}
	}

	return stats
}

func roundPercentage(unopened, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(unopened)/float64(total)*100*100) / 100
}
