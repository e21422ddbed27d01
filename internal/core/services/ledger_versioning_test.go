package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/atelierdecor/portal_backend/internal/apperrors"
	"github.com/atelierdecor/portal_backend/internal/core/domain"
	portssvc "github.com/atelierdecor/portal_backend/internal/core/ports/services"
	"github.com/atelierdecor/portal_backend/internal/core/services"
	"github.com/atelierdecor/portal_backend/internal/dto"
	"github.com/atelierdecor/portal_backend/internal/repositories/database/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// LedgerVersioningTestSuite drives the full service stack against the
// in-memory store, walking a ledger through its edit/freeze lifecycle.
type LedgerVersioningTestSuite struct {
	suite.Suite
	store    *memory.LedgerStore
	services *portssvc.ServiceContainer

	clientID string
}

func (suite *LedgerVersioningTestSuite) SetupTest() {
	suite.store = memory.NewLedgerStore()
	suite.services = services.NewServiceContainer(suite.store, nil)
	suite.clientID = uuid.NewString()
}

func (suite *LedgerVersioningTestSuite) createExpense(amount, description string) *domain.LedgerEntry {
	entry, err := suite.services.Editing.CreateEntry(context.Background(), suite.clientID, domain.KindExpense, dto.CreateEntryRequest{
		Date:        time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Status:      string(domain.StatusPaid),
	})
	require.NoError(suite.T(), err)
	return entry
}

func (suite *LedgerVersioningTestSuite) TestFirstSnapshotFreezesAllEntries() {
	ctx := context.Background()
	e1 := suite.createExpense("10.00", "Wall paint")
	e2 := suite.createExpense("20.00", "Brushes")

	version, err := suite.services.Snapshot.CreateSnapshot(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 1, version.VersionNumber)
	assert.Equal(suite.T(), 2, version.EntryCount)
	assert.True(suite.T(), version.Total.Equal(decimal.RequireFromString("30.00")), "total %s", version.Total)

	ids := []string{version.Entries[0].EntryID, version.Entries[1].EntryID}
	assert.Contains(suite.T(), ids, e1.EntryID)
	assert.Contains(suite.T(), ids, e2.EntryID)

	// Freezing resets the open ledger.
	open, err := suite.services.Query.GetOpenLedger(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), open)

	state, err := suite.store.GetDiscussionState(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, state.VersionCount)
	assert.True(suite.T(), state.Completed)
	assert.NotNil(suite.T(), state.LastBoundaryAt)
}

func (suite *LedgerVersioningTestSuite) TestHistoryImmutableWhileOpenLedgerGrows() {
	ctx := context.Background()
	e1 := suite.createExpense("10.00", "Wall paint")
	suite.createExpense("20.00", "Brushes")

	_, err := suite.services.Snapshot.CreateSnapshot(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)

	e3 := suite.createExpense("5.00", "Sandpaper")

	open, err := suite.services.Query.GetOpenLedger(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), open, 1)
	assert.Equal(suite.T(), e3.EntryID, open[0].EntryID)

	history, err := suite.services.Query.GetHistory(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), history, 1)
	assert.Equal(suite.T(), 2, history[0].EntryCount)

	// The frozen entry rejects mutation and keeps its original amount.
	newAmount := decimal.RequireFromString("99.00")
	_, err = suite.services.Editing.UpdateEntry(ctx, suite.clientID, domain.KindExpense, e1.EntryID, dto.UpdateEntryRequest{Amount: &newAmount})
	assert.ErrorIs(suite.T(), err, apperrors.ErrImmutableRecord)

	history, err = suite.services.Query.GetHistory(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	for _, frozen := range history[0].Entries {
		if frozen.EntryID == e1.EntryID {
			assert.True(suite.T(), frozen.Amount.Equal(decimal.RequireFromString("10.00")))
		}
	}
}

func (suite *LedgerVersioningTestSuite) TestSecondSnapshotFreezesOnlyNewEntries() {
	ctx := context.Background()
	suite.createExpense("10.00", "Wall paint")
	suite.createExpense("20.00", "Brushes")

	_, err := suite.services.Snapshot.CreateSnapshot(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)

	e3 := suite.createExpense("5.00", "Sandpaper")

	version, err := suite.services.Snapshot.CreateSnapshot(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 2, version.VersionNumber)
	require.Len(suite.T(), version.Entries, 1)
	assert.Equal(suite.T(), e3.EntryID, version.Entries[0].EntryID)
	assert.True(suite.T(), version.Total.Equal(decimal.RequireFromString("5.00")))

	open, err := suite.services.Query.GetOpenLedger(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), open)

	state, err := suite.store.GetDiscussionState(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, state.VersionCount)
}

func (suite *LedgerVersioningTestSuite) TestConcurrentCreatesBothSurvive() {
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = suite.services.Editing.CreateEntry(ctx, suite.clientID, domain.KindExpense, dto.CreateEntryRequest{
				Date:        time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
				Amount:      decimal.RequireFromString("10.00"),
				Description: "Concurrent entry",
				Status:      string(domain.StatusPending),
			})
		}(i)
	}
	wg.Wait()
	require.NoError(suite.T(), errs[0])
	require.NoError(suite.T(), errs[1])

	version, err := suite.services.Snapshot.CreateSnapshot(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, version.EntryCount)
	assert.True(suite.T(), version.Total.Equal(decimal.RequireFromString("20.00")))
}

func (suite *LedgerVersioningTestSuite) TestConcurrentSnapshotsSerialize() {
	ctx := context.Background()
	for _, description := range []string{"Wall paint", "Brushes", "Sandpaper", "Masking tape"} {
		suite.createExpense("10.00", description)
	}

	var wg sync.WaitGroup
	versions := make([]*domain.Version, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			versions[i], errs[i] = suite.services.Snapshot.CreateSnapshot(ctx, suite.clientID, domain.KindExpense)
		}(i)
	}
	wg.Wait()
	require.NoError(suite.T(), errs[0])
	require.NoError(suite.T(), errs[1])

	// Both snapshots commit, numbered 1 and 2 with no duplicate.
	numbers := map[int]bool{versions[0].VersionNumber: true, versions[1].VersionNumber: true}
	assert.Equal(suite.T(), map[int]bool{1: true, 2: true}, numbers)

	// Every entry lands in exactly one version; whichever snapshot ran first
	// froze all four and left nothing for the second.
	frozen := map[string]int{}
	for _, v := range versions {
		for _, e := range v.Entries {
			frozen[e.EntryID]++
		}
	}
	require.Len(suite.T(), frozen, 4)
	for entryID, count := range frozen {
		assert.Equal(suite.T(), 1, count, "entry %s frozen %d times", entryID, count)
	}
	assert.Equal(suite.T(), 4, versions[0].EntryCount+versions[1].EntryCount)

	state, err := suite.store.GetDiscussionState(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, state.VersionCount)
}

func (suite *LedgerVersioningTestSuite) TestEmptySnapshotAllowed() {
	ctx := context.Background()

	version, err := suite.services.Snapshot.CreateSnapshot(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, version.VersionNumber)
	assert.Zero(suite.T(), version.EntryCount)
	assert.True(suite.T(), version.Total.IsZero())
}

func (suite *LedgerVersioningTestSuite) TestKindsAreIndependent() {
	ctx := context.Background()
	suite.createExpense("10.00", "Wall paint")

	_, err := suite.services.Editing.CreateEntry(ctx, suite.clientID, domain.KindCashReceipt, dto.CreateEntryRequest{
		Date:   time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
		Amount: decimal.RequireFromString("500.00"),
	})
	require.NoError(suite.T(), err)

	// Freezing expenses leaves the cash-receipt ledger untouched.
	_, err = suite.services.Snapshot.CreateSnapshot(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)

	receipts, err := suite.services.Query.GetOpenLedger(ctx, suite.clientID, domain.KindCashReceipt)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), receipts, 1)

	receiptHistory, err := suite.services.Query.GetHistory(ctx, suite.clientID, domain.KindCashReceipt)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), receiptHistory)
}

func (suite *LedgerVersioningTestSuite) TestSummaryConservation() {
	ctx := context.Background()
	suite.createExpense("10.00", "Wall paint")
	suite.createExpense("20.00", "Brushes")

	_, err := suite.services.Snapshot.CreateSnapshot(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)

	suite.createExpense("5.00", "Sandpaper")
	suite.createExpense("7.00", "Masking tape")

	summary, err := suite.services.Query.GetLedgerSummary(ctx, suite.clientID, domain.KindExpense)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 1, summary.VersionCount)
	assert.Equal(suite.T(), 2, summary.OpenCount)
	assert.True(suite.T(), summary.OpenTotal.Equal(decimal.RequireFromString("12.00")))
	assert.True(suite.T(), summary.OpenAverage.Equal(decimal.RequireFromString("6.00")))
	assert.Equal(suite.T(), 2, summary.HistoryCount)
	assert.True(suite.T(), summary.HistoryTotal.Equal(decimal.RequireFromString("30.00")))
	// Every entry is counted exactly once across open ledger and history.
	assert.True(suite.T(), summary.GrandTotal.Equal(decimal.RequireFromString("42.00")))
}

func TestLedgerVersioning(t *testing.T) {
	suite.Run(t, new(LedgerVersioningTestSuite))
}
