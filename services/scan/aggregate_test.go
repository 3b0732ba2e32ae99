package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsweep/mailsweep/internal/models"
	"github.com/mailsweep/mailsweep/internal/utils"
)

func record(sender string, opened bool, size int64) models.EmailRecord {
	return models.EmailRecord{
		ScanID:        "scan_1",
		Owner:         "owner-1",
		SenderAddress: sender,
		IsOpened:      opened,
		SizeBytes:     size,
	}
}

func TestAggregateSenders_FoldsBySenderAddress(t *testing.T) {
	records := []models.EmailRecord{
		record("a@example.com", true, 100),
		record("b@example.com", false, 50),
		record("a@example.com", false, 200),
		record("a@example.com", false, 300),
	}

	summaries := AggregateSenders(records)

	require.Len(t, summaries, 2)
	a := summaries[0]
	assert.Equal(t, "a@example.com", a.SenderAddress)
	assert.Equal(t, int64(3), a.TotalMessages)
	assert.Equal(t, int64(2), a.UnopenedCount)
	assert.Equal(t, int64(600), a.TotalSizeBytes)
	assert.InDelta(t, 66.67, a.UnopenedPercentage, 0.001)

	b := summaries[1]
	assert.Equal(t, int64(1), b.TotalMessages)
	assert.Equal(t, int64(1), b.UnopenedCount)
	assert.InDelta(t, 100.0, b.UnopenedPercentage, 0.001)
}

func TestAggregateSenders_PercentageRoundedToTwoDecimals(t *testing.T) {
	records := []models.EmailRecord{
		record("a@example.com", false, 0),
		record("a@example.com", true, 0),
		record("a@example.com", true, 0),
	}

	summaries := AggregateSenders(records)

	require.Len(t, summaries, 1)
	// 1/3 folds to 33.33, not a long floating tail
	assert.Equal(t, 33.33, summaries[0].UnopenedPercentage)
}

func TestAggregateSenders_FirstNonEmptyDisplayNameWins(t *testing.T) {
	first := record("a@example.com", true, 0)
	second := record("a@example.com", true, 0)
	second.SenderDisplayName = utils.StringPtr("Later Name")
	third := record("a@example.com", true, 0)
	third.SenderDisplayName = utils.StringPtr("Even Later")

	summaries := AggregateSenders([]models.EmailRecord{first, second, third})

	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].SenderDisplayName)
	assert.Equal(t, "Later Name", *summaries[0].SenderDisplayName)
}

func TestAggregateSenders_UnsubscribeIsSticky(t *testing.T) {
	withUnsub := record("a@example.com", true, 0)
	withUnsub.HasUnsubscribe = true

	summaries := AggregateSenders([]models.EmailRecord{
		record("a@example.com", true, 0),
		withUnsub,
		record("a@example.com", true, 0),
	})

	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].HasUnsubscribe)
}

func TestAggregateSenders_Empty(t *testing.T) {
	assert.Empty(t, AggregateSenders(nil))
}

func TestComputeCompletionStats_DeletableThreshold(t *testing.T) {
	records := []models.EmailRecord{
		// exactly 75% unopened: deletable
		record("bulk@example.com", false, 10),
		record("bulk@example.com", false, 10),
		record("bulk@example.com", false, 10),
		record("bulk@example.com", true, 10),
		// 50% unopened: kept
		record("friend@example.com", false, 5),
		record("friend@example.com", true, 5),
	}
	summaries := AggregateSenders(records)

	stats := ComputeCompletionStats(records, summaries)

	assert.Equal(t, int64(6), stats.TotalEmailsScanned)
	assert.Equal(t, int64(2), stats.TotalSenders)
	assert.Equal(t, int64(50), stats.SpaceScanned)
	assert.Equal(t, int64(1), stats.DeletableSenders)
	assert.Equal(t, int64(4), stats.DeletableMails)
	assert.Equal(t, int64(40), stats.RecoverableSpace)
}

func TestComputeCompletionStats_JustBelowThresholdIsKept(t *testing.T) {
	// 74.99% rounds below the threshold: 7499 unopened out of 10000
	records := make([]models.EmailRecord, 0, 10000)
	for i := 0; i < 7499; i++ {
		records = append(records, record("edge@example.com", false, 1))
	}
	for i := 0; i < 2501; i++ {
		records = append(records, record("edge@example.com", true, 1))
	}
	summaries := AggregateSenders(records)

	require.Len(t, summaries, 1)
	assert.Equal(t, 74.99, summaries[0].UnopenedPercentage)

	stats := ComputeCompletionStats(records, summaries)
	assert.Zero(t, stats.DeletableSenders)
	assert.Zero(t, stats.DeletableMails)
	assert.Zero(t, stats.RecoverableSpace)
}
