package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFrozen(t *testing.T) {
	boundary := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	before := LedgerEntry{CreatedAt: boundary.Add(-time.Second)}
	at := LedgerEntry{CreatedAt: boundary}
	after := LedgerEntry{CreatedAt: boundary.Add(time.Second)}

	// Never frozen without a boundary.
	assert.False(t, before.Frozen(nil))

	assert.True(t, before.Frozen(&boundary))
	assert.True(t, at.Frozen(&boundary), "an entry created exactly at the boundary belongs to the frozen side")
	assert.False(t, after.Frozen(&boundary))
}

func TestValidExpenseStatus(t *testing.T) {
	assert.True(t, ValidExpenseStatus(StatusPaid))
	assert.True(t, ValidExpenseStatus(StatusPending))
	assert.True(t, ValidExpenseStatus(StatusUpcoming))
	assert.False(t, ValidExpenseStatus(""))
	assert.False(t, ValidExpenseStatus("overdue"))
}

func TestSumEntries(t *testing.T) {
	entries := []LedgerEntry{
		{Amount: decimal.RequireFromString("10.00")},
		{Amount: decimal.RequireFromString("20.50")},
		{Amount: decimal.RequireFromString("0.01")},
	}
	assert.True(t, SumEntries(entries).Equal(decimal.RequireFromString("30.51")))
	assert.True(t, SumEntries(nil).IsZero())
}
