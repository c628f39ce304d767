package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	portsrepo "github.com/fdcbooks/tax_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/core/services"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepository = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) CreateWithHistory(ctx context.Context, txn domain.Transaction, entry domain.HistoryEntry) error {
	args := m.Called(ctx, txn, entry)
	return args.Error(0)
}

func (m *MockTransactionRepository) CreateBatchWithHistory(ctx context.Context, txns []domain.Transaction, entries []domain.HistoryEntry) error {
	args := m.Called(ctx, txns, entries)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockTransactionRepository) UpdateWithHistory(ctx context.Context, txn domain.Transaction, expectedStatus domain.Status, entry domain.HistoryEntry) error {
	args := m.Called(ctx, txn, expectedStatus, entry)
	return args.Error(0)
}

func (m *MockTransactionRepository) BulkUpdate(ctx context.Context, criteria domain.BulkCriteria, patch domain.TransactionPatch, actor domain.Actor, comment string, now time.Time) (int, error) {
	args := m.Called(ctx, criteria, patch, actor, comment, now)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) ListHistory(ctx context.Context, transactionID string) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

// --- Test Suite Setup ---
type TransactionServiceTestSuite struct {
	suite.Suite
	mockRepo   *MockTransactionRepository
	service    portssvc.TransactionSvcFacade
	bookkeeper domain.Actor
	admin      domain.Actor
	taxAgent   domain.Actor
	existing   domain.Transaction
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTransactionRepository)
	suite.service = services.NewTransactionService(suite.mockRepo)

	suite.bookkeeper = domain.Actor{UserID: uuid.NewString(), Role: domain.RoleBookkeeper}
	suite.admin = domain.Actor{UserID: uuid.NewString(), Role: domain.RoleAdmin}
	suite.taxAgent = domain.Actor{UserID: uuid.NewString(), Role: domain.RoleTaxAgent}

	now := time.Now().UTC().Add(-time.Hour)
	suite.existing = domain.Transaction{
		TransactionID:  uuid.NewString(),
		ClientID:       uuid.NewString(),
		Date:           time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.NewFromFloat(120.50),
		PayeeRaw:       "Shell Coolaroo",
		DescriptionRaw: "EFTPOS SHELL COOLAROO",
		Source:         domain.SourceBank,
		Status:         domain.StatusPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "importer",
			LastUpdatedAt: now,
			LastUpdatedBy: "importer",
		},
	}
}

func (suite *TransactionServiceTestSuite) TestCreateSuccess() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		ClientID: uuid.NewString(),
		Date:     "2025-03-14",
		Amount:   decimal.NewFromFloat(42.00),
		PayeeRaw: "Officeworks",
	}

	suite.mockRepo.On("CreateWithHistory", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("domain.HistoryEntry")).Return(nil).Once()

	txn, err := suite.service.Create(ctx, req, suite.bookkeeper)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusNew, txn.Status)
	suite.Equal(domain.SourceManual, txn.Source)
	suite.Equal(req.ClientID, txn.ClientID)
	suite.Equal(suite.bookkeeper.UserID, txn.CreatedBy)
	suite.NotEmpty(txn.TransactionID)

	// The creation history entry has no before state and a full after snapshot
	entryArg := suite.mockRepo.Calls[0].Arguments.Get(2).(domain.HistoryEntry)
	suite.Equal(domain.ActionManual, entryArg.Action)
	suite.Nil(entryArg.Before)
	suite.Equal(txn.TransactionID, entryArg.After["id"])

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateForbiddenForTaxAgent() {
	req := dto.CreateTransactionRequest{ClientID: "c1", Date: "2025-03-14", Amount: decimal.NewFromInt(10)}

	_, err := suite.service.Create(context.Background(), req, suite.taxAgent)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRepo.AssertNotCalled(suite.T(), "CreateWithHistory")
}

func (suite *TransactionServiceTestSuite) TestCreateValidationEnumeratesAllViolations() {
	req := dto.CreateTransactionRequest{Date: "14/03/2025"}

	_, err := suite.service.Create(context.Background(), req, suite.bookkeeper)
	var validationErr *apperrors.ValidationError
	suite.Require().True(errors.As(err, &validationErr))
	suite.Contains(validationErr.Violations, "clientID")
	suite.Contains(validationErr.Violations, "date")
	suite.Contains(validationErr.Violations, "amount")
}

func (suite *TransactionServiceTestSuite) TestUpdateAppliesPatchAndRecordsHistory() {
	ctx := context.Background()
	category := "Fuel"
	reviewed := string(domain.StatusReviewed)
	req := dto.UpdateTransactionRequest{
		CategoryBookkeeper: &category,
		Status:             &reviewed,
		Comment:            "coded during review",
	}

	suite.mockRepo.On("FindByID", ctx, suite.existing.TransactionID).Return(&suite.existing, nil).Once()
	suite.mockRepo.On("UpdateWithHistory", ctx, mock.AnythingOfType("domain.Transaction"), suite.existing.Status, mock.AnythingOfType("domain.HistoryEntry")).Return(nil).Once()

	txn, err := suite.service.Update(ctx, suite.existing.TransactionID, req, suite.bookkeeper)
	suite.Require().NoError(err)
	suite.Equal("Fuel", txn.CategoryBookkeeper)
	suite.Equal(domain.StatusReviewed, txn.Status)
	suite.Equal(suite.bookkeeper.UserID, txn.LastUpdatedBy)
	// Amount and date are untouched
	suite.True(txn.Amount.Equal(suite.existing.Amount))
	suite.Equal(suite.existing.Date, txn.Date)

	entryArg := suite.mockRepo.Calls[1].Arguments.Get(3).(domain.HistoryEntry)
	suite.Equal(domain.ActionManual, entryArg.Action)
	suite.Equal("coded during review", entryArg.Comment)
	suite.Equal(string(domain.StatusPending), entryArg.Before[domain.FieldStatus])
	suite.Equal(string(domain.StatusReviewed), entryArg.After[domain.FieldStatus])

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateLockedRowRejectsNonNotesFields() {
	ctx := context.Background()
	locked := suite.existing
	locked.Status = domain.StatusLocked

	category := "Fuel"
	req := dto.UpdateTransactionRequest{CategoryBookkeeper: &category}

	suite.mockRepo.On("FindByID", ctx, locked.TransactionID).Return(&locked, nil).Once()

	_, err := suite.service.Update(ctx, locked.TransactionID, req, suite.bookkeeper)
	var fieldLockedErr *apperrors.FieldLockedError
	suite.Require().True(errors.As(err, &fieldLockedErr))
	suite.Equal([]string{domain.FieldCategoryBookkeeper}, fieldLockedErr.Fields)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateWithHistory")
}

func (suite *TransactionServiceTestSuite) TestUpdateLockedRowAllowsNotes() {
	ctx := context.Background()
	locked := suite.existing
	locked.Status = domain.StatusLocked

	notes := "query receipt with client"
	req := dto.UpdateTransactionRequest{NotesBookkeeper: &notes}

	suite.mockRepo.On("FindByID", ctx, locked.TransactionID).Return(&locked, nil).Once()
	suite.mockRepo.On("UpdateWithHistory", ctx, mock.AnythingOfType("domain.Transaction"), domain.StatusLocked, mock.AnythingOfType("domain.HistoryEntry")).Return(nil).Once()

	txn, err := suite.service.Update(ctx, locked.TransactionID, req, suite.bookkeeper)
	suite.Require().NoError(err)
	suite.Equal(notes, txn.NotesBookkeeper)
	suite.Equal(domain.StatusLocked, txn.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestAdminExcludeLockedRowClearsLockMetadata() {
	ctx := context.Background()
	lockedAt := time.Date(2025, 5, 2, 11, 30, 0, 0, time.UTC)
	locked := suite.existing
	locked.Status = domain.StatusLocked
	locked.LockedAt = &lockedAt
	locked.LockedByRole = domain.RoleTaxAgent

	excluded := string(domain.StatusExcluded)
	req := dto.UpdateTransactionRequest{Status: &excluded, Comment: "duplicate of a reconciled entry"}

	suite.mockRepo.On("FindByID", ctx, locked.TransactionID).Return(&locked, nil).Once()
	suite.mockRepo.On("UpdateWithHistory", ctx, mock.AnythingOfType("domain.Transaction"), domain.StatusLocked, mock.AnythingOfType("domain.HistoryEntry")).Return(nil).Once()

	txn, err := suite.service.Update(ctx, locked.TransactionID, req, suite.admin)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusExcluded, txn.Status)
	suite.Nil(txn.LockedAt)
	suite.Equal(domain.Role(""), txn.LockedByRole)

	// The row persisted and the history snapshot carry no lock metadata either
	savedArg := suite.mockRepo.Calls[1].Arguments.Get(1).(domain.Transaction)
	suite.Nil(savedArg.LockedAt)
	entryArg := suite.mockRepo.Calls[1].Arguments.Get(3).(domain.HistoryEntry)
	suite.Equal("2025-05-02T11:30:00Z", entryArg.Before["locked_at"])
	suite.Nil(entryArg.After["locked_at"])
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateEmptyPatchRejected() {
	_, err := suite.service.Update(context.Background(), suite.existing.TransactionID, dto.UpdateTransactionRequest{}, suite.bookkeeper)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindByID")
}

func (suite *TransactionServiceTestSuite) TestUpdatePropagatesConflict() {
	ctx := context.Background()
	category := "Fuel"
	req := dto.UpdateTransactionRequest{CategoryBookkeeper: &category}

	suite.mockRepo.On("FindByID", ctx, suite.existing.TransactionID).Return(&suite.existing, nil).Once()
	suite.mockRepo.On("UpdateWithHistory", ctx, mock.Anything, suite.existing.Status, mock.Anything).Return(apperrors.ErrConflict).Once()

	_, err := suite.service.Update(ctx, suite.existing.TransactionID, req, suite.bookkeeper)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TransactionServiceTestSuite) TestBulkUpdateDelegatesToRepository() {
	ctx := context.Background()
	category := "Fuel"
	req := dto.BulkUpdateRequest{
		Criteria: dto.BulkUpdateCriteria{ClientID: "c1", Category: "fuel misc"},
		Updates:  dto.UpdateTransactionRequest{CategoryBookkeeper: &category},
		Comment:  "recode fuel",
	}

	suite.mockRepo.On("BulkUpdate", ctx, mock.AnythingOfType("domain.BulkCriteria"), mock.AnythingOfType("domain.TransactionPatch"), suite.bookkeeper, "recode fuel", mock.AnythingOfType("time.Time")).Return(7, nil).Once()

	count, err := suite.service.BulkUpdate(ctx, req, suite.bookkeeper)
	suite.Require().NoError(err)
	suite.Equal(7, count)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestBulkUpdateRequiresCriteria() {
	category := "Fuel"
	req := dto.BulkUpdateRequest{
		Updates: dto.UpdateTransactionRequest{CategoryBookkeeper: &category},
	}

	_, err := suite.service.BulkUpdate(context.Background(), req, suite.bookkeeper)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "BulkUpdate")
}

func (suite *TransactionServiceTestSuite) TestBulkUpdateRequiresPatch() {
	req := dto.BulkUpdateRequest{
		Criteria: dto.BulkUpdateCriteria{ClientID: "c1"},
	}

	_, err := suite.service.BulkUpdate(context.Background(), req, suite.bookkeeper)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestHistoryUnknownTransaction() {
	ctx := context.Background()
	suite.mockRepo.On("FindByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.History(ctx, "missing", suite.bookkeeper)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListHistory")
}

func (suite *TransactionServiceTestSuite) TestListForbiddenForClient() {
	client := domain.Actor{UserID: uuid.NewString(), Role: domain.RoleClient}
	_, err := suite.service.List(context.Background(), dto.ListTransactionsParams{}, client)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func TestBulkCriteriaDateValidation(t *testing.T) {
	req := dto.BulkUpdateRequest{
		Criteria: dto.BulkUpdateCriteria{ClientID: "c1", DateFrom: "not-a-date"},
	}
	_, err := req.ToCriteria()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
