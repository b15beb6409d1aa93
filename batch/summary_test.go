package batch_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdrealty/asset-engine/batch"
	"github.com/rdrealty/asset-engine/depreciation"
)

func detail(id, category string, method depreciation.Method, status batch.Status, amount int64) batch.Detail {
	return batch.Detail{
		AssetID:  depreciation.AssetID(id),
		Category: category,
		Method:   method,
		Status:   status,
		Amount:   decimal.NewFromInt(amount),
	}
}

func TestSummarize_GroupsByCategoryAndMethod(t *testing.T) {
	details := []batch.Detail{
		detail("a1", "IT Equipment", depreciation.StraightLine, batch.StatusSuccess, 100),
		detail("a2", "IT Equipment", depreciation.DecliningBalance, batch.StatusSuccess, 250),
		detail("a3", "Vehicles", depreciation.StraightLine, batch.StatusSuccess, 450),
	}

	s := batch.Summarize(details)

	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, "IT Equipment", s.ByCategory[0].Key)
	assert.Equal(t, 2, s.ByCategory[0].Count)
	assert.True(t, s.ByCategory[0].Amount.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, "Vehicles", s.ByCategory[1].Key)
	assert.True(t, s.ByCategory[1].Amount.Equal(decimal.NewFromInt(450)))

	require.Len(t, s.ByMethod, 2)
	assert.Equal(t, "DECLINING_BALANCE", s.ByMethod[0].Key)
	assert.True(t, s.ByMethod[0].Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "STRAIGHT_LINE", s.ByMethod[1].Key)
	assert.Equal(t, 2, s.ByMethod[1].Count)
}

func TestSummarize_OnlyCountsSuccessfulDetails(t *testing.T) {
	details := []batch.Detail{
		detail("a1", "IT Equipment", depreciation.StraightLine, batch.StatusSuccess, 100),
		detail("a2", "IT Equipment", depreciation.StraightLine, batch.StatusFailed, 999),
		detail("a3", "IT Equipment", depreciation.StraightLine, batch.StatusNoSetup, 0),
		detail("a4", "Furniture", depreciation.StraightLine, batch.StatusFullyDepreciated, 0),
	}

	s := batch.Summarize(details)

	require.Len(t, s.ByCategory, 1)
	assert.Equal(t, 1, s.ByCategory[0].Count)
	assert.True(t, s.ByCategory[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestSummarize_ZeroAmountSuccessStillCounted(t *testing.T) {
	// Ineligible assets are SUCCESS with amount 0 and belong in the counts.
	details := []batch.Detail{
		detail("a1", "IT Equipment", depreciation.StraightLine, batch.StatusSuccess, 0),
	}

	s := batch.Summarize(details)

	require.Len(t, s.ByCategory, 1)
	assert.Equal(t, 1, s.ByCategory[0].Count)
	assert.True(t, s.ByCategory[0].Amount.IsZero())
}

func TestSummarize_Empty(t *testing.T) {
	s := batch.Summarize(nil)

	assert.Empty(t, s.ByCategory)
	assert.Empty(t, s.ByMethod)
}
