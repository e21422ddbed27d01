package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/atelierdecor/portal_backend/internal/apperrors"
	"github.com/atelierdecor/portal_backend/internal/core/domain"
	portsrepo "github.com/atelierdecor/portal_backend/internal/core/ports/repositories"
	portssvc "github.com/atelierdecor/portal_backend/internal/core/ports/services"
	"github.com/atelierdecor/portal_backend/internal/core/services"
	"github.com/atelierdecor/portal_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

// Ensure MockLedgerRepository implements portsrepo.LedgerRepositoryWithLock
var _ portsrepo.LedgerRepositoryWithLock = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntries(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, clientID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntriesAfter(ctx context.Context, clientID string, kind domain.LedgerKind, after *time.Time) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, clientID, kind, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) DeleteEntry(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListVersions(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.Version, error) {
	args := m.Called(ctx, clientID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Version), args.Error(1)
}

func (m *MockLedgerRepository) SaveVersion(ctx context.Context, version domain.Version) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetDiscussionState(ctx context.Context, clientID string, kind domain.LedgerKind) (*domain.DiscussionState, error) {
	args := m.Called(ctx, clientID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscussionState), args.Error(1)
}

func (m *MockLedgerRepository) AdvanceDiscussionState(ctx context.Context, clientID string, kind domain.LedgerKind, boundaryAt time.Time) (*domain.DiscussionState, error) {
	args := m.Called(ctx, clientID, kind, boundaryAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DiscussionState), args.Error(1)
}

// WithLedgerLock runs fn directly against the mock; lock semantics are covered
// by the store tests.
func (m *MockLedgerRepository) WithLedgerLock(ctx context.Context, clientID string, kind domain.LedgerKind, fn func(repo portsrepo.LedgerRepositoryFacade) error) error {
	m.Called(ctx, clientID, kind)
	return fn(m)
}

// --- Test Suite ---

type LedgerEditingServiceTestSuite struct {
	suite.Suite
	mockRepo *MockLedgerRepository
	service  portssvc.LedgerEditingSvcFacade

	clientID string
}

func (suite *LedgerEditingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.service = services.NewLedgerEditingService(suite.mockRepo)
	suite.clientID = uuid.NewString()
}

func (suite *LedgerEditingServiceTestSuite) openState() *domain.DiscussionState {
	return &domain.DiscussionState{
		ClientID: suite.clientID,
		Kind:     domain.KindExpense,
	}
}

func (suite *LedgerEditingServiceTestSuite) TestCreateEntry_Expense_Success() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("150.50"),
		Description: "Paint and primer",
		Status:      string(domain.StatusPaid),
	}

	suite.mockRepo.On("WithLedgerLock", ctx, suite.clientID, domain.KindExpense).Return(nil).Once()
	suite.mockRepo.On("SaveEntry", ctx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.ClientID == suite.clientID &&
			e.Kind == domain.KindExpense &&
			e.Amount.Equal(req.Amount) &&
			e.EntryID != "" &&
			!e.CreatedAt.IsZero()
	})).Return(nil).Once()

	entry, err := suite.service.CreateEntry(ctx, suite.clientID, domain.KindExpense, req)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), entry)
	assert.Equal(suite.T(), "Paint and primer", entry.Description)
	assert.Equal(suite.T(), domain.StatusPaid, entry.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerEditingServiceTestSuite) TestCreateEntry_NonPositiveAmount_Fails() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:        time.Now().UTC(),
		Amount:      decimal.RequireFromString("-5.00"),
		Description: "Bad amount",
		Status:      string(domain.StatusPaid),
	}

	entry, err := suite.service.CreateEntry(ctx, suite.clientID, domain.KindExpense, req)

	assert.Nil(suite.T(), entry)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	assert.ErrorIs(suite.T(), err, services.ErrAmountNotPositive)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (suite *LedgerEditingServiceTestSuite) TestCreateEntry_TooManyFractionDigits_Fails() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:        time.Now().UTC(),
		Amount:      decimal.RequireFromString("10.005"),
		Description: "Sub-cent amount",
		Status:      string(domain.StatusPending),
	}

	_, err := suite.service.CreateEntry(ctx, suite.clientID, domain.KindExpense, req)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	assert.ErrorIs(suite.T(), err, services.ErrAmountPrecision)
}

func (suite *LedgerEditingServiceTestSuite) TestCreateEntry_ExpenseWithoutDescription_Fails() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:   time.Now().UTC(),
		Amount: decimal.RequireFromString("10.00"),
		Status: string(domain.StatusPaid),
	}

	_, err := suite.service.CreateEntry(ctx, suite.clientID, domain.KindExpense, req)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	assert.ErrorIs(suite.T(), err, services.ErrDescriptionMissing)
}

func (suite *LedgerEditingServiceTestSuite) TestCreateEntry_ExpenseWithBadStatus_Fails() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:        time.Now().UTC(),
		Amount:      decimal.RequireFromString("10.00"),
		Description: "Tile delivery",
		Status:      "overdue",
	}

	_, err := suite.service.CreateEntry(ctx, suite.clientID, domain.KindExpense, req)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	assert.ErrorIs(suite.T(), err, services.ErrStatusInvalid)
}

func (suite *LedgerEditingServiceTestSuite) TestCreateEntry_CashReceiptWithExpenseFields_Fails() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:        time.Now().UTC(),
		Amount:      decimal.RequireFromString("500.00"),
		Description: "Should not be here",
	}

	_, err := suite.service.CreateEntry(ctx, suite.clientID, domain.KindCashReceipt, req)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	assert.ErrorIs(suite.T(), err, services.ErrReceiptExtraFields)
}

func (suite *LedgerEditingServiceTestSuite) TestCreateEntry_CashReceipt_Success() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Amount: decimal.RequireFromString("1000.00"),
	}

	suite.mockRepo.On("WithLedgerLock", ctx, suite.clientID, domain.KindCashReceipt).Return(nil).Once()
	suite.mockRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.LedgerEntry")).Return(nil).Once()

	entry, err := suite.service.CreateEntry(ctx, suite.clientID, domain.KindCashReceipt, req)

	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), entry.Description)
	assert.Empty(suite.T(), entry.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerEditingServiceTestSuite) TestUpdateEntry_FrozenEntry_Fails() {
	ctx := context.Background()
	boundary := time.Now().UTC()
	frozen := &domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		ClientID:    suite.clientID,
		Kind:        domain.KindExpense,
		Amount:      decimal.RequireFromString("10.00"),
		Description: "Frozen into version 1",
		Status:      domain.StatusPaid,
		CreatedAt:   boundary.Add(-time.Hour),
	}
	state := suite.openState()
	state.Completed = true
	state.LastBoundaryAt = &boundary
	state.VersionCount = 1

	suite.mockRepo.On("WithLedgerLock", ctx, suite.clientID, domain.KindExpense).Return(nil).Once()
	suite.mockRepo.On("FindEntryByID", ctx, frozen.EntryID).Return(frozen, nil).Once()
	suite.mockRepo.On("GetDiscussionState", ctx, suite.clientID, domain.KindExpense).Return(state, nil).Once()

	newAmount := decimal.RequireFromString("99.00")
	updated, err := suite.service.UpdateEntry(ctx, suite.clientID, domain.KindExpense, frozen.EntryID, dto.UpdateEntryRequest{Amount: &newAmount})

	assert.Nil(suite.T(), updated)
	assert.ErrorIs(suite.T(), err, apperrors.ErrImmutableRecord)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateEntry", mock.Anything, mock.Anything)
}

func (suite *LedgerEditingServiceTestSuite) TestUpdateEntry_OpenEntry_Success() {
	ctx := context.Background()
	boundary := time.Now().UTC().Add(-time.Hour)
	open := &domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		ClientID:    suite.clientID,
		Kind:        domain.KindExpense,
		Amount:      decimal.RequireFromString("10.00"),
		Description: "Curtain fabric",
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	state := suite.openState()
	state.LastBoundaryAt = &boundary

	suite.mockRepo.On("WithLedgerLock", ctx, suite.clientID, domain.KindExpense).Return(nil).Once()
	suite.mockRepo.On("FindEntryByID", ctx, open.EntryID).Return(open, nil).Once()
	suite.mockRepo.On("GetDiscussionState", ctx, suite.clientID, domain.KindExpense).Return(state, nil).Once()
	suite.mockRepo.On("UpdateEntry", ctx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.EntryID == open.EntryID && e.Status == domain.StatusPaid
	})).Return(nil).Once()

	newStatus := string(domain.StatusPaid)
	updated, err := suite.service.UpdateEntry(ctx, suite.clientID, domain.KindExpense, open.EntryID, dto.UpdateEntryRequest{Status: &newStatus})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.StatusPaid, updated.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerEditingServiceTestSuite) TestUpdateEntry_WrongLedger_NotFound() {
	ctx := context.Background()
	other := &domain.LedgerEntry{
		EntryID:   uuid.NewString(),
		ClientID:  uuid.NewString(), // some other client
		Kind:      domain.KindExpense,
		Amount:    decimal.RequireFromString("10.00"),
		CreatedAt: time.Now().UTC(),
	}

	suite.mockRepo.On("WithLedgerLock", ctx, suite.clientID, domain.KindExpense).Return(nil).Once()
	suite.mockRepo.On("FindEntryByID", ctx, other.EntryID).Return(other, nil).Once()

	newDesc := "hijack"
	_, err := suite.service.UpdateEntry(ctx, suite.clientID, domain.KindExpense, other.EntryID, dto.UpdateEntryRequest{Description: &newDesc})

	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateEntry", mock.Anything, mock.Anything)
}

func (suite *LedgerEditingServiceTestSuite) TestDeleteEntry_FrozenEntry_Fails() {
	ctx := context.Background()
	boundary := time.Now().UTC()
	frozen := &domain.LedgerEntry{
		EntryID:   uuid.NewString(),
		ClientID:  suite.clientID,
		Kind:      domain.KindCashReceipt,
		Amount:    decimal.RequireFromString("250.00"),
		CreatedAt: boundary.Add(-time.Minute),
	}
	state := &domain.DiscussionState{
		ClientID:       suite.clientID,
		Kind:           domain.KindCashReceipt,
		Completed:      true,
		LastBoundaryAt: &boundary,
		VersionCount:   1,
	}

	suite.mockRepo.On("WithLedgerLock", ctx, suite.clientID, domain.KindCashReceipt).Return(nil).Once()
	suite.mockRepo.On("FindEntryByID", ctx, frozen.EntryID).Return(frozen, nil).Once()
	suite.mockRepo.On("GetDiscussionState", ctx, suite.clientID, domain.KindCashReceipt).Return(state, nil).Once()

	err := suite.service.DeleteEntry(ctx, suite.clientID, domain.KindCashReceipt, frozen.EntryID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrImmutableRecord)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteEntry", mock.Anything, mock.Anything)
}

func (suite *LedgerEditingServiceTestSuite) TestDeleteEntry_OpenEntry_Success() {
	ctx := context.Background()
	open := &domain.LedgerEntry{
		EntryID:   uuid.NewString(),
		ClientID:  suite.clientID,
		Kind:      domain.KindExpense,
		Amount:    decimal.RequireFromString("10.00"),
		CreatedAt: time.Now().UTC(),
	}

	suite.mockRepo.On("WithLedgerLock", ctx, suite.clientID, domain.KindExpense).Return(nil).Once()
	suite.mockRepo.On("FindEntryByID", ctx, open.EntryID).Return(open, nil).Once()
	suite.mockRepo.On("GetDiscussionState", ctx, suite.clientID, domain.KindExpense).Return(suite.openState(), nil).Once()
	suite.mockRepo.On("DeleteEntry", ctx, open.EntryID).Return(nil).Once()

	err := suite.service.DeleteEntry(ctx, suite.clientID, domain.KindExpense, open.EntryID)

	assert.NoError(suite.T(), err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestLedgerEditingService(t *testing.T) {
	suite.Run(t, new(LedgerEditingServiceTestSuite))
}
